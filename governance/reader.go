package governance

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// reader walks borsh encoded account data and keeps the first error, so layouts
// read top to bottom and check once at the end.
type reader struct {
	decoder *bin.Decoder
	err     error
}

func newReader(data []byte) *reader {
	return &reader{decoder: bin.NewBorshDecoder(data)}
}

func (r *reader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.err = r.decoder.ReadUint8()
	return v
}

func (r *reader) boolean() bool {
	return r.u8() != 0
}

func (r *reader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	v, r.err = r.decoder.ReadUint16(bin.LE)
	return v
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.decoder.ReadUint32(bin.LE)
	return v
}

func (r *reader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	v, r.err = r.decoder.ReadUint64(bin.LE)
	return v
}

func (r *reader) i64() int64 {
	return int64(r.u64())
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	var b []byte
	b, r.err = r.decoder.ReadBytes(n)
	return b
}

func (r *reader) skip(n int) {
	r.bytes(n)
}

func (r *reader) pubkey() solana.PublicKey {
	var pk solana.PublicKey
	copy(pk[:], r.bytes(solana.PublicKeyLength))
	return pk
}

func (r *reader) string() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	return string(r.bytes(int(n)))
}

func (r *reader) optionPubkey() *solana.PublicKey {
	if !r.boolean() || r.err != nil {
		return nil
	}
	pk := r.pubkey()
	return &pk
}

func (r *reader) optionI64() *int64 {
	if !r.boolean() || r.err != nil {
		return nil
	}
	v := r.i64()
	return &v
}

func (r *reader) optionU64() *uint64 {
	if !r.boolean() || r.err != nil {
		return nil
	}
	v := r.u64()
	return &v
}
