// Package filter parses CSS filter strings and applies them to raster images.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrUnknownFunction = errors.New("unknown filter function")
	ErrInvalidArgument = errors.New("invalid filter argument")
)

type Kind string

const (
	Brightness Kind = "brightness"
	Contrast   Kind = "contrast"
	Saturate   Kind = "saturate"
	Grayscale  Kind = "grayscale"
	Sepia      Kind = "sepia"
	HueRotate  Kind = "hue-rotate"
	Invert     Kind = "invert"
	Opacity    Kind = "opacity"
	Blur       Kind = "blur"
)

// Op is one filter function with its normalized amount: a factor for most
// kinds, degrees for HueRotate and design-space pixels for Blur.
type Op struct {
	Kind   Kind
	Amount float64
}

// Chain is an ordered list of filter functions.
type Chain []Op

// Identity reports whether the chain changes nothing.
func (c Chain) Identity() bool {
	return len(c) == 0
}

var funcPattern = regexp.MustCompile(`([a-z-]+)\(\s*([^)]*?)\s*\)`)

// Parse reads a CSS filter value such as "sepia(0.3) saturate(120%)".
// An empty string and "none" yield an empty chain.
func Parse(s string) (Chain, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return nil, nil
	}

	matches := funcPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, s)
	}

	var (
		chain Chain
		last  int
	)
	for _, m := range matches {
		if strings.TrimSpace(s[last:m[0]]) != "" {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, s[last:m[0]])
		}
		last = m[1]

		name := Kind(s[m[2]:m[3]])
		arg := s[m[4]:m[5]]

		op, err := parseOp(name, arg)
		if err != nil {
			return nil, err
		}
		chain = append(chain, op)
	}
	if strings.TrimSpace(s[last:]) != "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, s[last:])
	}

	return chain, nil
}

func parseOp(kind Kind, arg string) (Op, error) {
	switch kind {
	case HueRotate:
		deg, err := parseAngle(arg)
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: kind, Amount: deg}, nil
	case Blur:
		px, err := parseLength(arg)
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: kind, Amount: px}, nil
	case Brightness, Contrast, Saturate:
		v, err := parseAmount(arg)
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: kind, Amount: v}, nil
	case Grayscale, Sepia, Invert, Opacity:
		v, err := parseAmount(arg)
		if err != nil {
			return Op{}, err
		}
		if v > 1 {
			v = 1
		}
		return Op{Kind: kind, Amount: v}, nil
	default:
		return Op{}, fmt.Errorf("%w: %s", ErrUnknownFunction, kind)
	}
}

// parseAmount accepts a number or a percentage. A missing argument means 1.
func parseAmount(arg string) (float64, error) {
	if arg == "" {
		return 1, nil
	}
	scale := 1.0
	if strings.HasSuffix(arg, "%") {
		arg = strings.TrimSuffix(arg, "%")
		scale = 0.01
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidArgument, arg)
	}
	return v * scale, nil
}

func parseAngle(arg string) (float64, error) {
	if arg == "" || arg == "0" {
		return 0, nil
	}
	unit := 1.0
	switch {
	case strings.HasSuffix(arg, "deg"):
		arg = strings.TrimSuffix(arg, "deg")
	case strings.HasSuffix(arg, "turn"):
		arg = strings.TrimSuffix(arg, "turn")
		unit = 360
	default:
		return 0, fmt.Errorf("%w: angle %q needs a unit", ErrInvalidArgument, arg)
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidArgument, arg)
	}
	return v * unit, nil
}

func parseLength(arg string) (float64, error) {
	if arg == "" || arg == "0" {
		return 0, nil
	}
	if !strings.HasSuffix(arg, "px") {
		return 0, fmt.Errorf("%w: length %q needs px", ErrInvalidArgument, arg)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "px"), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidArgument, arg)
	}
	return v, nil
}
