package oracle

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
	"github.com/zeebo/blake3"

	apperrors "github.com/agbru/hashprobe/internal/errors"
)

// digestFunc returns the full digest of data.
type digestFunc func(data []byte) []byte

var builtinDigests = map[string]digestFunc{
	"xxhash64": func(data []byte) []byte {
		return binary.BigEndian.AppendUint64(nil, xxhash.Sum64(data))
	},
	"murmur3": func(data []byte) []byte {
		return binary.BigEndian.AppendUint64(nil, murmur3.Sum64(data))
	},
	"blake3": func(data []byte) []byte {
		sum := blake3.Sum256(data)
		return sum[:]
	},
}

// BuiltinAlgorithms returns the names accepted after "builtin:", sorted.
func BuiltinAlgorithms() []string {
	names := make([]string, 0, len(builtinDigests))
	for name := range builtinDigests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin is an in-process oracle. With Bits set, the digest is truncated to
// its low Bits bits, which makes collisions observable on small input spaces.
type Builtin struct {
	algo   string
	bits   uint
	digest digestFunc
}

var _ Oracle = (*Builtin)(nil)

// ParseBuiltin parses "builtin:<algo>[/<bits>]".
func ParseBuiltin(spec string) (*Builtin, error) {
	body := strings.TrimPrefix(spec, BuiltinPrefix)
	algo, bitsStr, hasBits := strings.Cut(body, "/")
	digest, ok := builtinDigests[algo]
	if !ok {
		return nil, apperrors.NewConfigError("unknown builtin oracle %q (available: %s)",
			algo, strings.Join(BuiltinAlgorithms(), ", "))
	}
	b := &Builtin{algo: algo, digest: digest}
	if hasBits {
		bits, err := strconv.ParseUint(bitsStr, 10, 8)
		if err != nil || bits < 1 || bits > 64 {
			return nil, apperrors.NewConfigError("builtin oracle bits must be in [1,64], got %q", bitsStr)
		}
		b.bits = uint(bits)
	}
	return b, nil
}

// Name returns the spec that selects this oracle.
func (b *Builtin) Name() string {
	if b.bits == 0 {
		return BuiltinPrefix + b.algo
	}
	return fmt.Sprintf("%s%s/%d", BuiltinPrefix, b.algo, b.bits)
}

// Probe hashes input in-process and returns the digest as lowercase hex.
func (b *Builtin) Probe(ctx context.Context, input string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sum := b.digest([]byte(input))
	if b.bits == 0 {
		return hex.EncodeToString(sum), nil
	}
	v := binary.BigEndian.Uint64(sum[:8])
	if b.bits < 64 {
		v &= (uint64(1) << b.bits) - 1
	}
	return fmt.Sprintf("%0*x", int(b.bits+3)/4, v), nil
}
