package assert

import (
	"fmt"
	"github.com/csr-ugra/yellowpages-parser/internal/log"
	"github.com/sirupsen/logrus"
	"reflect"
)

// data is a list of key/value pairs attached to the fatal log entry
func assert(msg string, data ...interface{}) {
	fields := make(logrus.Fields)
	for i := 0; i < len(data); i += 2 {
		key := fmt.Sprint(data[i])
		if i+1 < len(data) {
			fields[key] = data[i+1]
			continue
		}

		fields[key] = ""
	}

	log.GetLogger().WithFields(fields).Fatal(msg)
}

func Assert(truth bool, msg string, data ...any) {
	if !truth {
		assert(msg, data...)
	}
}

func NotNil(obj any, msg string, data ...any) {
	if !isNil(obj) {
		return
	}

	assert(msg, data...)
}

func NoError(err error, msg string, data ...any) {
	if err != nil {
		data = append(data, "error", err)
		assert(msg, data...)
	}
}

// typed nil pointers stored in an interface are nil too
func isNil(obj any) bool {
	if obj == nil {
		return true
	}

	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}

	return false
}
