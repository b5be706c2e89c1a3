package testutil

import "github.com/spf13/pflag"

// StringValue is a pflag.Value backed by a plain string, used in tests
// that need to hand a fixed path to a command without going through
// flag parsing.
type StringValue struct {
	Value string
}

// NewStringValue returns a StringValue flag set to v.
func NewStringValue(v string) pflag.Value {
	return &StringValue{Value: v}
}

var _ pflag.Value = (*StringValue)(nil)

// String returns the flag's value.
func (v *StringValue) String() string {
	return v.Value
}

// Set overwrites the flag's value.
func (v *StringValue) Set(value string) error {
	v.Value = value
	return nil
}

// Type returns the unique type of the Value.
func (v *StringValue) Type() string {
	return "string"
}
