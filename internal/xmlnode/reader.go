package xmlnode

import (
	"errors"
	"fmt"
	"math"
)

// Reader reads attributes of one element with default fallback and
// collects every malformed value it had to replace, so a caller can decode
// a whole element and report the problems once at the end.
type Reader struct {
	el   *Element
	errs []error
}

// NewReader returns a Reader over el.
func NewReader(el *Element) *Reader {
	return &Reader{el: el}
}

// Float is Element.Float with error collection.
func (r *Reader) Float(name string, def float64) float64 {
	v, err := r.el.Float(name, def)
	r.keep(err)
	return v
}

// FloatRange is Float restricted to finite values in [lo, hi]. Anything
// else is recorded as malformed and replaced by def.
func (r *Reader) FloatRange(name string, def, lo, hi float64) float64 {
	v := r.Float(name, def)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		r.Malformed(name, r.el.AttrOr(name, ""))
		return def
	}
	return v
}

// Int is Element.Int with error collection.
func (r *Reader) Int(name string, def int) int {
	v, err := r.el.Int(name, def)
	r.keep(err)
	return v
}

// Bool is Element.Bool with error collection.
func (r *Reader) Bool(name string, def bool) bool {
	v, err := r.el.Bool(name, def)
	r.keep(err)
	return v
}

// String returns the attribute value or def.
func (r *Reader) String(name, def string) string {
	return r.el.AttrOr(name, def)
}

// Malformed records that the value of name could not be used.
func (r *Reader) Malformed(name, value string) {
	r.errs = append(r.errs, r.el.malformed(name, value))
}

// Wrap records err, which came from decoding part of the element, if it is
// not nil.
func (r *Reader) Wrap(err error, context string) {
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", context, err))
	}
}

// Err returns all recorded problems joined, or nil.
func (r *Reader) Err() error {
	return errors.Join(r.errs...)
}

func (r *Reader) keep(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}
