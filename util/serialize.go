package util

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/downfa11-org/escapebridge/pkg/types"
)

// EncodeCommand serializes a command name and its body into one frame body.
func EncodeCommand(name string, body string) []byte {
	nameBytes := []byte(name)
	bodyBytes := []byte(body)
	data := make([]byte, 2+len(nameBytes)+len(bodyBytes))
	binary.BigEndian.PutUint16(data[:2], uint16(len(nameBytes)))
	copy(data[2:2+len(nameBytes)], nameBytes)
	copy(data[2+len(nameBytes):], bodyBytes)
	return data
}

// DecodeCommand splits a frame body back into command name and body.
func DecodeCommand(data []byte) (string, string, error) {
	if len(data) < 2 {
		return "", "", fmt.Errorf("command frame too short")
	}
	nameLen := binary.BigEndian.Uint16(data[:2])
	if int(nameLen)+2 > len(data) {
		return "", "", fmt.Errorf("invalid command name length")
	}
	name := string(data[2 : 2+nameLen])
	body := string(data[2+int(nameLen):])
	return name, body, nil
}

// EncodeMessageExt serializes a message for storage or transfer.
// Layout: [topic_len][topic][queueId][queueOffset][storeHost_len][storeHost]
// [bornHost_len][bornHost][payload_len][payload]. The queue offset written
// here is informational; readers must prefer the store-assigned offset.
func EncodeMessageExt(msg *types.MessageExt) []byte {
	topicBytes := []byte(msg.Topic)
	storeHostBytes := []byte(msg.StoreHost)
	bornHostBytes := []byte(msg.BornHost)

	totalSize := 2 + len(topicBytes) + 4 + 8 + 2 + len(storeHostBytes) + 2 + len(bornHostBytes) + 4 + len(msg.Payload)
	buf := make([]byte, totalSize)

	offset := 0

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(topicBytes)))
	offset += 2
	copy(buf[offset:], topicBytes)
	offset += len(topicBytes)

	binary.BigEndian.PutUint32(buf[offset:], uint32(msg.QueueID))
	offset += 4

	binary.BigEndian.PutUint64(buf[offset:], msg.QueueOffset)
	offset += 8

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(storeHostBytes)))
	offset += 2
	copy(buf[offset:], storeHostBytes)
	offset += len(storeHostBytes)

	binary.BigEndian.PutUint16(buf[offset:], uint16(len(bornHostBytes)))
	offset += 2
	copy(buf[offset:], bornHostBytes)
	offset += len(bornHostBytes)

	binary.BigEndian.PutUint32(buf[offset:], uint32(len(msg.Payload)))
	offset += 4
	copy(buf[offset:], msg.Payload)

	return buf
}

// DecodeMessageExt decodes a buffer produced by EncodeMessageExt.
func DecodeMessageExt(data []byte) (*types.MessageExt, error) {
	if len(data) < 22 {
		return nil, fmt.Errorf("message buffer too short: %d bytes", len(data))
	}

	offset := 0

	topicLen := binary.BigEndian.Uint16(data[offset:])
	offset += 2
	if offset+int(topicLen) > len(data) {
		return nil, fmt.Errorf("invalid topic length")
	}
	topic := string(data[offset : offset+int(topicLen)])
	offset += int(topicLen)

	if offset+12 > len(data) {
		return nil, fmt.Errorf("truncated queue metadata")
	}
	queueID := int(int32(binary.BigEndian.Uint32(data[offset:])))
	offset += 4
	queueOffset := binary.BigEndian.Uint64(data[offset:])
	offset += 8

	if offset+2 > len(data) {
		return nil, fmt.Errorf("invalid store host length")
	}
	storeHostLen := binary.BigEndian.Uint16(data[offset:])
	offset += 2
	if offset+int(storeHostLen) > len(data) {
		return nil, fmt.Errorf("invalid store host")
	}
	storeHost := string(data[offset : offset+int(storeHostLen)])
	offset += int(storeHostLen)

	if offset+2 > len(data) {
		return nil, fmt.Errorf("invalid born host length")
	}
	bornHostLen := binary.BigEndian.Uint16(data[offset:])
	offset += 2
	if offset+int(bornHostLen) > len(data) {
		return nil, fmt.Errorf("invalid born host")
	}
	bornHost := string(data[offset : offset+int(bornHostLen)])
	offset += int(bornHostLen)

	if offset+4 > len(data) {
		return nil, fmt.Errorf("invalid payload length")
	}
	payloadLen := binary.BigEndian.Uint32(data[offset:])
	offset += 4
	if offset+int(payloadLen) > len(data) {
		return nil, fmt.Errorf("truncated payload")
	}
	payload := make([]byte, payloadLen)
	copy(payload, data[offset:offset+int(payloadLen)])

	return &types.MessageExt{
		Topic:       topic,
		QueueID:     queueID,
		QueueOffset: queueOffset,
		StoreHost:   storeHost,
		BornHost:    bornHost,
		Payload:     payload,
	}, nil
}

// WriteWithLength writes data with a 4-byte length prefix.
func WriteWithLength(conn net.Conn, data []byte) error {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	if _, err := conn.Write(lenBuf); err != nil {
		return fmt.Errorf("write length: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// ReadWithLength reads data with a 4-byte length prefix.
func ReadWithLength(conn net.Conn) ([]byte, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, lenBuf); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf)
	buf := make([]byte, length)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return buf, nil
}
