package dicomio

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// sequenceItems returns the items of a sequence element, or nil when the
// element holds no sequence.
func sequenceItems(el *dicom.Element) []*dicom.SequenceItemValue {
	items, _ := el.Value.GetValue().([]*dicom.SequenceItemValue)
	return items
}

// itemElement finds an element by tag inside one sequence item.
func itemElement(item *dicom.SequenceItemValue, t tag.Tag) (*dicom.Element, bool) {
	elems, _ := item.GetValue().([]*dicom.Element)
	for _, el := range elems {
		if el.Tag == t {
			return el, true
		}
	}
	return nil, false
}

// elementFloats decodes a numeric element. Decimal-string values (DS) are
// parsed; already-numeric values pass through.
func elementFloats(el *dicom.Element) ([]float64, error) {
	switch v := el.Value.GetValue().(type) {
	case []float64:
		return v, nil
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, nil
	case []string:
		out := make([]float64, len(v))
		for i, s := range v {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s value %q", el.Tag, s)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, errors.Errorf("element %s holds no numeric value", el.Tag)
	}
}

// elementInt decodes the first value of an integer element, covering both
// binary (US) and integer-string (IS) representations.
func elementInt(el *dicom.Element) (int, error) {
	switch v := el.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0], nil
		}
	case []string:
		if len(v) > 0 {
			n, err := strconv.Atoi(strings.TrimSpace(v[0]))
			if err != nil {
				return 0, errors.Wrapf(err, "parsing %s value %q", el.Tag, v[0])
			}
			return n, nil
		}
	}
	return 0, errors.Errorf("element %s holds no integer value", el.Tag)
}

// elementString decodes the first value of a string element.
func elementString(el *dicom.Element) (string, error) {
	v, ok := el.Value.GetValue().([]string)
	if !ok || len(v) == 0 {
		return "", errors.Errorf("element %s holds no string value", el.Tag)
	}
	return strings.TrimSpace(v[0]), nil
}
