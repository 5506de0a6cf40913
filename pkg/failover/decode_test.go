package failover

import (
	"testing"

	"github.com/downfa11-org/escapebridge/pkg/config"
	"github.com/downfa11-org/escapebridge/pkg/store"
	"github.com/downfa11-org/escapebridge/pkg/types"
	"github.com/downfa11-org/escapebridge/util"
)

func decodeBridge() *EscapeBridge {
	cfg := &config.Config{BrokerName: "broker-a", BrokerID: 1}
	cfg.Normalize()
	return New(cfg, store.NewClusterLocator())
}

func encodedMessage(payload string) []byte {
	return util.EncodeMessageExt(&types.MessageExt{
		Topic:       "orders",
		QueueID:     0,
		QueueOffset: 999, // embedded offset must never win
		Payload:     []byte(payload),
	})
}

func TestDecodeMsgListSkipsNilBuffer(t *testing.T) {
	releases := 0
	batch := &types.GetMessageResult{
		BufferList:   [][]byte{encodedMessage("a"), nil, encodedMessage("c")},
		QueueOffsets: []uint64{10, 11, 12},
		ReleaseFunc:  func() { releases++ },
	}

	list := decodeBridge().decodeMsgList(batch)

	if len(list) != 2 {
		t.Fatalf("Expected 2 decoded messages, got %d", len(list))
	}
	if list[0].QueueOffset != 10 {
		t.Errorf("First message offset patched to %d, want 10", list[0].QueueOffset)
	}
	if list[1].QueueOffset != 12 {
		t.Errorf("Second message offset patched to %d, want 12 (not the skipped index's 11)", list[1].QueueOffset)
	}
	if releases != 1 {
		t.Errorf("Batch released %d times, want exactly once", releases)
	}
}

func TestDecodeMsgListSkipsCorruptBuffer(t *testing.T) {
	releases := 0
	batch := &types.GetMessageResult{
		BufferList: [][]byte{
			encodedMessage("a"),
			encodedMessage("b"),
			{0x01, 0x02}, // too short to decode
			encodedMessage("d"),
			encodedMessage("e"),
		},
		QueueOffsets: []uint64{20, 21, 22, 23, 24},
		ReleaseFunc:  func() { releases++ },
	}

	list := decodeBridge().decodeMsgList(batch)

	if len(list) != 4 {
		t.Fatalf("Expected 4 decoded messages, got %d", len(list))
	}
	wantOffsets := []uint64{20, 21, 23, 24}
	for i, msg := range list {
		if msg.QueueOffset != wantOffsets[i] {
			t.Errorf("Message %d offset %d, want %d", i, msg.QueueOffset, wantOffsets[i])
		}
	}
	if releases != 1 {
		t.Errorf("Batch released %d times, want exactly once", releases)
	}
}

func TestDecodeMsgListEmptyBatch(t *testing.T) {
	releases := 0
	batch := &types.GetMessageResult{ReleaseFunc: func() { releases++ }}

	list := decodeBridge().decodeMsgList(batch)

	if len(list) != 0 {
		t.Errorf("Expected no messages, got %d", len(list))
	}
	if releases != 1 {
		t.Errorf("Empty batch released %d times, want exactly once", releases)
	}
}

func TestDecodeMsgListPreservesOrder(t *testing.T) {
	batch := &types.GetMessageResult{
		BufferList:   [][]byte{encodedMessage("first"), encodedMessage("second"), encodedMessage("third")},
		QueueOffsets: []uint64{5, 6, 7},
	}

	list := decodeBridge().decodeMsgList(batch)

	want := []string{"first", "second", "third"}
	for i, msg := range list {
		if string(msg.Payload) != want[i] {
			t.Errorf("Message %d payload %q, want %q", i, msg.Payload, want[i])
		}
	}
}
