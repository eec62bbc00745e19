package config

import (
	"fmt"
	"strconv"
	"time"
)

type paramValue interface {
	setValue(newVal interface{}) error
}

// StringVal represents a string param value
type StringVal struct {
	val *string
}

// Value returns underlying value of a given param
func (val StringVal) Value() string {
	return *val.val
}

func (val StringVal) setValue(newVal interface{}) error {
	strVal, ok := newVal.(string)
	if !ok {
		return fmt.Errorf("Expected string value but got: %v(%[1]T)", newVal)
	}
	*val.val = strVal
	return nil
}

// IntVal represents an int param value
type IntVal struct {
	val *int
}

// Value returns underlying value of a given param
func (val IntVal) Value() int {
	return *val.val
}

func (val IntVal) setValue(newVal interface{}) error {
	switch v := newVal.(type) {
	case int:
		*val.val = v
		return nil
	case float32:
		*val.val = int(v)
		return nil
	case float64:
		*val.val = int(v)
		return nil
	case string:
		if intVal, err := strconv.Atoi(v); err == nil {
			*val.val = intVal
			return nil
		}
	}
	return fmt.Errorf("Expected int value but got: %v(%[1]T)", newVal)
}

// BoolVal represents a bool param value
type BoolVal struct {
	val *bool
}

// Value returns underlying value of a given param
func (val BoolVal) Value() bool {
	return *val.val
}

func (val BoolVal) setValue(newVal interface{}) error {
	switch v := newVal.(type) {
	case bool:
		*val.val = v
		return nil
	case string:
		if boolVal, err := strconv.ParseBool(v); err == nil {
			*val.val = boolVal
			return nil
		}
	}
	return fmt.Errorf("Expected bool value but got: %v(%[1]T)", newVal)
}

// DurationVal represents a time.Duration param value
type DurationVal struct {
	val *time.Duration
}

// Value returns underlying value of a given param
func (val DurationVal) Value() time.Duration {
	return *val.val
}

func (val DurationVal) setValue(newVal interface{}) error {
	switch v := newVal.(type) {
	case time.Duration:
		*val.val = v
		return nil
	case string:
		if duration, err := time.ParseDuration(v); err == nil {
			*val.val = duration
			return nil
		}
	}
	return fmt.Errorf("Expected duration value but got: %v(%[1]T)", newVal)
}
