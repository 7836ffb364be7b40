package script

import "github.com/btcsuite/btcd/txscript"

// WitnessItem is one witness stack element. Empty marks a zero-length wire item.
type WitnessItem struct {
	Data  []byte
	Empty bool
}

// Witness is an input's witness stack in wire order.
type Witness []WitnessItem

// NewWitness builds a witness from raw items, marking zero-length items as empty.
func NewWitness(items ...[]byte) Witness {
	w := make(Witness, len(items))
	for i, item := range items {
		if len(item) == 0 {
			w[i] = WitnessItem{Empty: true}
			continue
		}
		w[i] = WitnessItem{Data: item}
	}
	return w
}

// Last returns the final item, usually the witness script.
func (w Witness) Last() ([]byte, bool) {
	if len(w) == 0 {
		return nil, false
	}
	return w[len(w)-1].Bytes(), true
}

// Items returns the raw item bytes.
func (w Witness) Items() [][]byte {
	out := make([][]byte, len(w))
	for i, item := range w {
		out[i] = item.Bytes()
	}
	return out
}

// Commands converts items to commands the evaluator can execute. Empty items become OP_0.
func (w Witness) Commands() []Command {
	cmds := make([]Command, len(w))
	for i, item := range w {
		if item.Empty {
			cmds[i] = Op(txscript.OP_0)
			continue
		}
		cmds[i] = Push(item.Data)
	}
	return cmds
}

// Bytes returns the item data, empty for the empty marker.
func (i WitnessItem) Bytes() []byte {
	if i.Empty {
		return []byte{}
	}
	return i.Data
}
