package near

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
)

// encoder writes the borsh layout the node expects for transactions.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) bytes() []byte { return e.buf.Bytes() }

func (e *encoder) raw(b []byte) { e.buf.Write(b) }

func (e *encoder) u8(v uint8) { e.buf.WriteByte(v) }

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) u128(v *big.Int) error {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return fmt.Errorf("value %s does not fit in u128", v)
	}
	var be [16]byte
	v.FillBytes(be[:])
	for i := len(be) - 1; i >= 0; i-- {
		e.buf.WriteByte(be[i])
	}
	return nil
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf.WriteString(s)
}

func (e *encoder) publicKey(k PublicKey) {
	e.u8(uint8(k.Type()))
	e.raw(k.data[:])
}

func (e *encoder) transaction(t Transaction) error {
	e.str(string(t.SignerID))
	e.publicKey(t.PublicKey)
	e.u64(t.Nonce)
	e.str(string(t.ReceiverID))
	e.raw(t.BlockHash[:])
	e.u32(uint32(len(t.Actions)))
	for i, a := range t.Actions {
		if err := e.action(a); err != nil {
			return fmt.Errorf("encode action %d: %w", i, err)
		}
	}
	return nil
}

func (e *encoder) action(a Action) error {
	switch a.Kind {
	case ActionAddKey:
		if a.AddKey == nil {
			return fmt.Errorf("add key action has no body")
		}
		e.u8(actionIndexAddKey)
		e.publicKey(a.AddKey.PublicKey)
		e.u64(a.AddKey.AccessKey.Nonce)
		return e.permission(a.AddKey.AccessKey.Permission)
	default:
		return fmt.Errorf("unsupported action kind %q", a.Kind)
	}
}

func (e *encoder) permission(p Permission) error {
	switch p.Kind {
	case PermissionFullAccess:
		e.u8(1)
		return nil
	case PermissionFunctionCall:
		if p.FunctionCall == nil {
			return fmt.Errorf("function call permission has no body")
		}
		e.u8(0)
		if p.FunctionCall.Allowance == nil {
			e.u8(0)
		} else {
			e.u8(1)
			if err := e.u128(p.FunctionCall.Allowance); err != nil {
				return err
			}
		}
		e.str(string(p.FunctionCall.ReceiverID))
		e.u32(uint32(len(p.FunctionCall.MethodNames)))
		for _, m := range p.FunctionCall.MethodNames {
			e.str(m)
		}
		return nil
	default:
		return fmt.Errorf("unsupported permission kind %q", p.Kind)
	}
}
