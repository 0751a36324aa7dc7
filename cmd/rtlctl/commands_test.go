package main

import (
	"strings"
	"testing"
)

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name: "full scenario text",
			file: "full.yaml",
			wantContain: []string{
				"Scenario: everything",
				"Table (splay)",
				"len 50, first 51, last 100",
				"nth [51 100]",
				"claim 40 -> 0",
				"claim 40 -> 40",
				"claim 40 -> none",
				`\Device\HarddiskVolume1\Windows -> \Device\HarddiskVolume1`,
				`\??\C: -> (none)`,
			},
		},
		{
			name:        "full scenario json",
			file:        "full.yaml",
			json:        true,
			wantContain: []string{`"name": "everything"`, `"longest_clear"`},
		},
		{
			name:    "missing file",
			file:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json

			path := "does-not-exist.yaml"
			if tt.file != "" {
				path = testScenarioPath(t, tt.file)
			}
			output, err := captureOutput(t, func() error {
				return runScenario([]string{path})
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runScenario() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestBitmapCommand(t *testing.T) {
	tests := []struct {
		name           string
		size           int
		word           int
		set            []string
		claims         []int
		json           bool
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "first fit",
			size:        64,
			word:        64,
			claims:      []int{8, 16},
			wantContain: []string{"claim 8 -> 0", "claim 16 -> 8", "set 24 of 64", "longest clear run 40@24"},
		},
		{
			name:        "claims skip set range",
			size:        64,
			word:        32,
			set:         []string{"0:10"},
			claims:      []int{4},
			wantContain: []string{"claim 4 -> 10"},
		},
		{
			name:           "claim too large",
			size:           16,
			word:           32,
			claims:         []int{17},
			wantContain:    []string{"claim 17 -> none"},
			wantNotContain: []string{"claim 17 -> 0"},
		},
		{
			name:        "json",
			size:        32,
			word:        64,
			claims:      []int{32},
			json:        true,
			wantContain: []string{`"set": 32`},
		},
		{name: "bad word", size: 32, word: 16, wantErr: true},
		{name: "bad range", size: 32, word: 64, set: []string{"30:5"}, wantErr: true},
		{name: "malformed range", size: 32, word: 64, set: []string{"x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			bitmapSize, bitmapWord = tt.size, tt.word
			bitmapSet, bitmapClaims = tt.set, tt.claims
			jsonOut = tt.json

			cmd := newBitmapCmd()
			output, err := captureOutput(t, func() error {
				return cmd.RunE(cmd, nil)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("bitmap error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestHashCommand(t *testing.T) {
	tests := []struct {
		name        string
		algo        string
		ci          bool
		args        []string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "fnv empty input is offset basis",
			algo:        "fnv",
			args:        []string{""},
			wantContain: []string{"0xcbf29ce484222325"},
		},
		{
			name:        "fnv-fold ignores case",
			algo:        "fnv-fold",
			args:        []string{"ABC", "abc"},
			wantContain: []string{"ABC", "abc"},
		},
		{
			name:        "json",
			algo:        "x65599",
			ci:          true,
			args:        []string{"Software"},
			json:        true,
			wantContain: []string{`"algo": "x65599"`, `"name": "Software"`},
		},
		{name: "unknown algo", algo: "md5", args: []string{"a"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			hashAlgo, hashCI = tt.algo, tt.ci
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runHash(tt.args)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runHash() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestHashFoldMatches(t *testing.T) {
	resetFlags()
	hashAlgo = "fnv-fold"
	upper, err := signatureOf("SOFTWARE")
	if err != nil {
		t.Fatal(err)
	}
	lower, err := signatureOf("software")
	if err != nil {
		t.Fatal(err)
	}
	if upper != lower {
		t.Errorf("fnv-fold signatures differ: %#x vs %#x", upper, lower)
	}
}

func TestPrefixCommand(t *testing.T) {
	tests := []struct {
		name           string
		add            []string
		ci             bool
		args           []string
		json           bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "longest wins",
			add:         []string{"a", "ab", "abc"},
			args:        []string{"abcd", "abx", "b"},
			wantContain: []string{"abcd -> abc", "abx -> ab", "b -> (none)"},
		},
		{
			name:        "case insensitive",
			add:         []string{`\Device`},
			ci:          true,
			args:        []string{`\DEVICE\X`},
			wantContain: []string{`\DEVICE\X -> \Device`},
		},
		{
			name:           "case sensitive miss",
			add:            []string{`\Device`},
			args:           []string{`\DEVICE\X`},
			wantContain:    []string{"(none)"},
			wantNotContain: []string{`-> \Device`},
		},
		{
			name:        "json",
			add:         []string{"ab", "ab"},
			args:        []string{"abc"},
			json:        true,
			wantContain: []string{`"prefixes": 1`, `"prefix": "ab"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			prefixAdd, prefixCI = tt.add, tt.ci
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runPrefix(tt.args)
			})
			if err != nil {
				t.Fatalf("runPrefix() error = %v", err)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestTableCommand(t *testing.T) {
	for _, kind := range []string{"avl", "splay"} {
		t.Run(kind, func(t *testing.T) {
			resetFlags()
			tableKind = kind
			tableDelete = []int{3}
			jsonOut = true

			output, err := captureOutput(t, func() error {
				return runTable([]string{"5", "3", "9", "1", "5"})
			})
			if err != nil {
				t.Fatalf("runTable() error = %v", err)
			}
			assertJSON(t, output)
			assertContains(t, output, []string{`"count": 3`, `"duplicates": 1`, `"deleted": 1`})
		})
	}
}

func TestTableCommandErrors(t *testing.T) {
	resetFlags()
	if _, err := captureOutput(t, func() error { return runTable([]string{"x"}) }); err == nil {
		t.Error("expected error for non-numeric key")
	}
	tableKind = "btree"
	if _, err := captureOutput(t, func() error { return runTable([]string{"1"}) }); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestTableCommandOrder(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, func() error {
		return runTable([]string{"5", "3", "9", "1"})
	})
	if err != nil {
		t.Fatalf("runTable() error = %v", err)
	}
	if output != "1\n3\n5\n9\n" {
		t.Errorf("unexpected order: %q", output)
	}
}

func TestHelpExamplesUseSingleBackslashes(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if strings.Contains(cmd.Long, `\\`) {
			t.Errorf("%s help has a doubled backslash:\n%s", cmd.Name(), cmd.Long)
		}
	}
	for _, name := range []string{"hash", "prefix"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil {
			t.Fatalf("Find(%q): %v", name, err)
		}
		if !strings.Contains(cmd.Long, `'\Device`) {
			t.Errorf("%s help should show a quoted device path", name)
		}
	}
}
