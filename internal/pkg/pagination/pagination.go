// Package pagination turns the from/size parameters accepted by list endpoints
// into an offset/limit window for the storage layer.
package pagination

import (
	"fmt"
	"math"
	"strings"

	"github.com/shareit-dev/shareit-backend/internal/pkg/apperror"
)

// Mode selects how "from" is interpreted.
type Mode string

const (
	// ModeLegacy rounds "from" up to a page boundary: page = (from+size-1)/size.
	// Non-aligned values therefore skip records. This is the historical behaviour.
	ModeLegacy Mode = "legacy"
	// ModeOffset uses "from" as the exact number of records to skip.
	ModeOffset Mode = "offset"
)

// ParseMode parses a config value. Empty selects ModeLegacy.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLegacy:
		return ModeLegacy, nil
	case ModeOffset:
		return ModeOffset, nil
	default:
		return "", fmt.Errorf("unknown pagination mode %q", s)
	}
}

// MaxSize is the largest page a listing may request.
const MaxSize = 1000

// Window is a resolved offset/limit pair.
type Window struct {
	Offset int
	Limit  int
}

// Resolve validates from/size and computes the window to read.
func Resolve(from, size int, mode Mode) (Window, error) {
	if from < 0 {
		return Window{}, apperror.Newf(apperror.KindInvalidArgument, "from must not be negative, got %d", from)
	}
	if size <= 0 {
		return Window{}, apperror.Newf(apperror.KindInvalidArgument, "size must be positive, got %d", size)
	}
	if size > MaxSize {
		return Window{}, apperror.Newf(apperror.KindInvalidArgument, "size must not exceed %d, got %d", MaxSize, size)
	}

	if mode == ModeOffset {
		return Window{Offset: from, Limit: size}, nil
	}

	page := from / size
	if from%size != 0 {
		page++
	}
	if page > math.MaxInt/size {
		// Past any storable row: the window is empty, not wrapped around.
		return Window{Offset: math.MaxInt, Limit: size}, nil
	}
	return Window{Offset: page * size, Limit: size}, nil
}
