package chat

import (
	"reflect"
	"testing"
)

func TestIsCommand(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{"/summarize", true},
		{"  /summarize last week", true},
		{"/", true},
		{"hello team", false},
		{"see /summarize docs", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsCommand(tc.body); got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.body, got, tc.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantCmd Command
		wantOK  bool
	}{
		{
			name:    "verb only",
			body:    "/summarize",
			wantCmd: Command{Verb: "summarize", Args: []string{}},
			wantOK:  true,
		},
		{
			name:    "verb with args",
			body:    "/cite fig 3",
			wantCmd: Command{Verb: "cite", Args: []string{"fig", "3"}},
			wantOK:  true,
		},
		{
			name:    "uppercase verb lowered",
			body:    "/SUMMARIZE",
			wantCmd: Command{Verb: "summarize", Args: []string{}},
			wantOK:  true,
		},
		{
			name:    "leading whitespace",
			body:    "   /status",
			wantCmd: Command{Verb: "status", Args: []string{}},
			wantOK:  true,
		},
		{
			name:   "sentinel only",
			body:   "/",
			wantOK: false,
		},
		{
			name:   "sentinel with whitespace",
			body:   "/   ",
			wantOK: false,
		},
		{
			name:   "plain message",
			body:   "hello",
			wantOK: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, ok := ParseCommand(tc.body)
			if ok != tc.wantOK {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tc.body, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if cmd.Verb != tc.wantCmd.Verb {
				t.Errorf("verb = %q, want %q", cmd.Verb, tc.wantCmd.Verb)
			}
			if len(cmd.Args) != len(tc.wantCmd.Args) {
				t.Fatalf("args = %v, want %v", cmd.Args, tc.wantCmd.Args)
			}
			if len(cmd.Args) > 0 && !reflect.DeepEqual(cmd.Args, tc.wantCmd.Args) {
				t.Errorf("args = %v, want %v", cmd.Args, tc.wantCmd.Args)
			}
		})
	}
}

func TestKnownAndModeration(t *testing.T) {
	for _, verb := range []string{"summarize", "status", "cite", "help", "mute", "pin"} {
		if !Known(verb) {
			t.Errorf("Known(%q) = false, want true", verb)
		}
	}
	if Known("teleport") {
		t.Error("Known(teleport) = true, want false")
	}
	if !IsModeration("mute") || !IsModeration("pin") {
		t.Error("mute and pin should be moderation verbs")
	}
	if IsModeration("summarize") {
		t.Error("summarize should not be a moderation verb")
	}
}
