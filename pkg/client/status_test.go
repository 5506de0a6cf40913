package client

import (
	"testing"

	"github.com/downfa11-org/escapebridge/pkg/types"
)

func TestParseSendStatus(t *testing.T) {
	cases := map[string]types.SendStatus{
		"SEND_OK":             types.SendOK,
		"FLUSH_DISK_TIMEOUT":  types.SendFlushDiskTimeout,
		"FLUSH_SLAVE_TIMEOUT": types.SendFlushSlaveTimeout,
		"SLAVE_NOT_AVAILABLE": types.SendSlaveNotAvailable,
	}
	for wire, want := range cases {
		if got := parseSendStatus(wire); got != want {
			t.Errorf("parseSendStatus(%q) = %v, want %v", wire, got, want)
		}
	}
}

func TestParseSendStatusUnknown(t *testing.T) {
	got := parseSendStatus("SOMETHING_ELSE")

	switch got {
	case types.SendOK, types.SendFlushDiskTimeout, types.SendFlushSlaveTimeout, types.SendSlaveNotAvailable:
		t.Errorf("Unknown wire status must map outside the known range, got %v", got)
	}
}

func TestParsePullStatus(t *testing.T) {
	cases := map[string]types.PullStatus{
		"FOUND":          types.PullFound,
		"NO_NEW_MSG":     types.PullNoNewMsg,
		"NO_MATCHED_MSG": types.PullNoMatchedMsg,
		"OFFSET_ILLEGAL": types.PullOffsetIllegal,
	}
	for wire, want := range cases {
		if got := parsePullStatus(wire); got != want {
			t.Errorf("parsePullStatus(%q) = %v, want %v", wire, got, want)
		}
	}

	if got := parsePullStatus("GARBAGE"); got == types.PullFound {
		t.Errorf("Unknown pull status must never read as FOUND")
	}
}
