// Package config loads YAML configuration files with environment variable
// overrides declared through `env` struct tags.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file into out, expanding $VAR references in the file
// body, then applies `env` tag overrides.
func Load(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), out); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	ApplyEnv(out)
	return nil
}

// LoadOrDefault loads path if it exists and leaves out untouched otherwise.
func LoadOrDefault(path string, out any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return Load(path, out)
}

// ApplyEnv walks the struct pointed to by v and overwrites any field whose
// `env` tag names a set environment variable. Nested structs are walked
// recursively; unparseable values are ignored rather than erroring, so a
// bad override cannot take the process down.
func ApplyEnv(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	t := val.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := val.Field(i)

		if fieldVal.Kind() == reflect.Struct {
			if fieldVal.CanAddr() {
				ApplyEnv(fieldVal.Addr().Interface())
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok || !fieldVal.CanSet() {
			continue
		}

		setField(fieldVal, raw)
	}
}

var durationTypes = []reflect.Type{
	reflect.TypeOf(time.Duration(0)),
	reflect.TypeOf(Duration(0)),
}

func setField(fieldVal reflect.Value, raw string) {
	// Durations are int64 underneath; check them before the generic
	// integer case.
	for _, dt := range durationTypes {
		if fieldVal.Type() == dt {
			if d, err := time.ParseDuration(raw); err == nil {
				fieldVal.SetInt(int64(d))
			}
			return
		}
	}

	switch fieldVal.Kind() {
	case reflect.String:
		fieldVal.SetString(raw)
	case reflect.Int, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			fieldVal.SetInt(n)
		}
	case reflect.Float64:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			fieldVal.SetFloat(f)
		}
	case reflect.Bool:
		fieldVal.SetBool(strings.EqualFold(raw, "true") || raw == "1")
	}
}
