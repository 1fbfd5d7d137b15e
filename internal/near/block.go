package near

import (
	"fmt"
	"strconv"
)

type blockRefKind uint8

const (
	blockRefFinal blockRefKind = iota
	blockRefHeight
	blockRefHash
)

// BlockReference selects the block a query is evaluated against.
type BlockReference struct {
	kind   blockRefKind
	height uint64
	hash   CryptoHash
}

func FinalBlock() BlockReference { return BlockReference{kind: blockRefFinal} }

func BlockAtHeight(height uint64) BlockReference {
	return BlockReference{kind: blockRefHeight, height: height}
}

func BlockAtHash(hash CryptoHash) BlockReference {
	return BlockReference{kind: blockRefHash, hash: hash}
}

func (r BlockReference) IsFinal() bool { return r.kind == blockRefFinal }

// Params returns the block selector fields of a JSON-RPC query request.
func (r BlockReference) Params() map[string]any {
	switch r.kind {
	case blockRefHeight:
		return map[string]any{"block_id": r.height}
	case blockRefHash:
		return map[string]any{"block_id": r.hash.String()}
	default:
		return map[string]any{"finality": "final"}
	}
}

func (r BlockReference) String() string {
	switch r.kind {
	case blockRefHeight:
		return "height " + strconv.FormatUint(r.height, 10)
	case blockRefHash:
		return fmt.Sprintf("hash %s", r.hash)
	default:
		return "final"
	}
}
