package id

import (
	crand "crypto/rand"
	"sync"

	"github.com/benz9527/xtree/lib/infra"
)

// NanoIDGen returns url safe random ids of a fixed length.
type NanoIDGen func() string

const nanoIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// NewNanoID builds a generator of length characters. Random bytes are
// read in batches and consumed length at a time.
func NewNanoID(length int) (NanoIDGen, error) {
	if length < 2 || length > 255 {
		return nil, infra.NewErrorStack("[nano-id] invalid length")
	}

	pool := make([]byte, length*length*8)
	if _, err := crand.Read(pool); err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[nano-id] fill random pool")
	}
	var (
		lock   sync.Mutex
		offset int
		out    = make([]byte, length)
		mask   = byte(len(nanoIDAlphabet) - 1)
	)
	return func() string {
		lock.Lock()
		defer lock.Unlock()

		if offset+length > len(pool) {
			if _, err := crand.Read(pool); err != nil {
				panic(infra.WrapErrorStackWithMessage(err, "[nano-id] refill random pool"))
			}
			offset = 0
		}
		for i := range out {
			out[i] = nanoIDAlphabet[pool[offset+i]&mask]
		}
		offset += length
		return string(out)
	}, nil
}
