// Package script holds raw Bitcoin scripts, their parsed commands, standard templates and witness stacks.
package script

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/blockinsight7000-txcore/internal/utxo/model"
)

// MaxPushSize is the largest element a push command may carry.
const MaxPushSize = txscript.MaxScriptElementSize

// Command is either a bare opcode or a data push. Data is nil for bare opcodes.
type Command struct {
	Opcode byte
	Data   []byte
}

// Op returns a bare opcode command.
func Op(opcode byte) Command {
	return Command{Opcode: opcode}
}

// Push returns a data push command carrying the minimal push opcode for data.
func Push(data []byte) Command {
	if data == nil {
		data = []byte{}
	}
	return Command{Opcode: pushOpcode(len(data)), Data: data}
}

// IsPush reports whether c pushes data rather than executing an opcode.
func (c Command) IsPush() bool {
	return c.Data != nil
}

func (c Command) String() string {
	if c.IsPush() {
		return hex.EncodeToString(c.Data)
	}
	return fmt.Sprintf("OP_%#02x", c.Opcode)
}

func pushOpcode(n int) byte {
	switch {
	case n == 0:
		return txscript.OP_0
	case n <= txscript.OP_DATA_75:
		return byte(n)
	case n <= 0xff:
		return txscript.OP_PUSHDATA1
	case n <= 0xffff:
		return txscript.OP_PUSHDATA2
	default:
		return txscript.OP_PUSHDATA4
	}
}

// encode appends the wire form of c to buf.
func (c Command) encode(buf []byte) ([]byte, error) {
	if !c.IsPush() {
		return append(buf, c.Opcode), nil
	}
	n := len(c.Data)
	if n > MaxPushSize {
		return nil, fmt.Errorf("%w: push of %d bytes exceeds %d", model.ErrEncodingRange, n, MaxPushSize)
	}
	switch op := pushOpcode(n); op {
	case txscript.OP_0:
		buf = append(buf, op)
	case txscript.OP_PUSHDATA1:
		buf = append(buf, op, byte(n))
	case txscript.OP_PUSHDATA2:
		buf = append(buf, op)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
	default:
		buf = append(buf, op)
	}
	return append(buf, c.Data...), nil
}

// decodeCommands splits raw script bytes into commands.
func decodeCommands(raw []byte) ([]Command, error) {
	var cmds []Command
	for i := 0; i < len(raw); {
		op := raw[i]
		i++

		var n int
		switch {
		case op >= txscript.OP_DATA_1 && op <= txscript.OP_DATA_75:
			n = int(op)
		case op == txscript.OP_PUSHDATA1:
			if i+1 > len(raw) {
				return nil, truncated(op)
			}
			n = int(raw[i])
			i++
		case op == txscript.OP_PUSHDATA2:
			if i+2 > len(raw) {
				return nil, truncated(op)
			}
			n = int(binary.LittleEndian.Uint16(raw[i:]))
			i += 2
		case op == txscript.OP_PUSHDATA4:
			if i+4 > len(raw) {
				return nil, truncated(op)
			}
			n = int(binary.LittleEndian.Uint32(raw[i:]))
			i += 4
		default:
			cmds = append(cmds, Op(op))
			continue
		}

		if n < 0 || n > len(raw)-i {
			return nil, truncated(op)
		}
		data := make([]byte, n)
		copy(data, raw[i:i+n])
		cmds = append(cmds, Command{Opcode: op, Data: data})
		i += n
	}
	return cmds, nil
}

func truncated(op byte) error {
	return fmt.Errorf("%w: push opcode %#02x runs past end of script", model.ErrMalformedInput, op)
}
