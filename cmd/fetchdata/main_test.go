package main

import (
	"bytes"
	"testing"
	"time"
)

func TestRootCmd_Flags(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/world")
	cmd := newRootCmd()

	if got := cmd.Flags().Lookup("out").DefValue; got != "/srv/world" {
		t.Errorf("out default = %q, want DATA_DIR", got)
	}

	if err := cmd.ParseFlags([]string{"--strict", "--timeout", "5s", "--rps", "0"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	strict, _ := cmd.Flags().GetBool("strict")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	rps, _ := cmd.Flags().GetFloat64("rps")
	if !strict || timeout != 5*time.Second || rps != 0 {
		t.Errorf("flags = strict %v, timeout %v, rps %v", strict, timeout, rps)
	}
}

func TestRootCmd_UnknownFlag(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--no-such-flag"})

	if err := cmd.Execute(); err == nil {
		t.Error("unknown flag should fail")
	}
}
