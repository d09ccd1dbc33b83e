// Package query wraps one persistence call and normalizes its outcome.
//
// A call is attempted exactly once. Errors are reported as *Error and never
// replaced with fallback data; a successful empty list comes back as an empty
// (non-nil) slice; panics inside the call are recovered into the same *Error
// shape. Every call is logged with a random query id and timed.
package query

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"time"

	"erp-backend/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CodeNotFound = "not_found"
	CodeCanceled = "canceled"
	CodeTimeout  = "timeout"
)

// Error is the normalized failure of a query.
type Error struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Debug describes one call for diagnostics.
type Debug struct {
	QueryID    string        `json:"query_id"`
	Duration   time.Duration `json:"duration"`
	HasError   bool          `json:"has_error"`
	DataType   string        `json:"data_type,omitempty"`
	DataLength int           `json:"data_length"`
	Reason     string        `json:"reason,omitempty"`
}

const (
	reasonEmpty = "empty"
	reasonError = "error"
	reasonPanic = "panic"
)

type Result[T any] struct {
	Data  T
	Err   *Error
	Debug Debug
}

// OK reports whether the call succeeded, with or without content.
func (r Result[T]) OK() bool { return r.Err == nil }

// Empty reports a successful call that produced nothing.
func (r Result[T]) Empty() bool { return r.Err == nil && r.Debug.Reason == reasonEmpty }

// Run executes fn once.
func Run[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) Result[T] {
	return run(ctx, name, fn)
}

// RunList executes fn once and guarantees a non-nil slice on success.
func RunList[T any](ctx context.Context, name string, fn func(ctx context.Context) ([]T, error)) Result[[]T] {
	res := run(ctx, name, fn)
	if res.Err == nil && res.Data == nil {
		res.Data = []T{}
	}
	return res
}

func run[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) (res Result[T]) {
	qid := newQueryID()
	log := zap.L().With(zap.String("query", name), zap.String("query_id", qid))
	log.Debug("sorgu başladı")
	start := time.Now()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var zero T
		res = Result[T]{
			Data: zero,
			Err:  fromPanic(r),
			Debug: Debug{
				QueryID:    qid,
				Duration:   time.Since(start),
				HasError:   true,
				DataLength: -1,
				Reason:     reasonPanic,
			},
		}
		log.Error("sorgu panikledi",
			zap.String("error", res.Err.Message),
			zap.String("error_name", res.Err.Name),
			zap.Duration("duration", res.Debug.Duration),
		)
		metrics.ObserveQuery(name, reasonError, res.Debug.Duration)
	}()

	data, err := fn(ctx)
	dbg := Debug{QueryID: qid, Duration: time.Since(start), DataLength: -1}

	if err != nil {
		var zero T
		dbg.HasError = true
		dbg.Reason = reasonError
		qerr := FromError(err)
		log.Warn("sorgu hatası",
			zap.Duration("duration", dbg.Duration),
			zap.String("error", qerr.Message),
			zap.String("error_name", qerr.Name),
			zap.String("code", qerr.Code),
		)
		metrics.ObserveQuery(name, reasonError, dbg.Duration)
		return Result[T]{Data: zero, Err: qerr, Debug: dbg}
	}

	dbg.DataType, dbg.DataLength = shape(data)
	outcome := "ok"
	if isEmpty(data) {
		dbg.Reason = reasonEmpty
		outcome = reasonEmpty
		log.Info("sorgu sonucu boş", zap.Duration("duration", dbg.Duration), zap.String("data_type", dbg.DataType))
	} else {
		log.Debug("sorgu tamamlandı",
			zap.Duration("duration", dbg.Duration),
			zap.String("data_type", dbg.DataType),
			zap.Int("data_length", dbg.DataLength),
		)
	}
	metrics.ObserveQuery(name, outcome, dbg.Duration)
	return Result[T]{Data: data, Debug: dbg}
}

// FromError normalizes any error into the query error shape.
func FromError(err error) *Error {
	var qerr *Error
	if errors.As(err, &qerr) {
		return qerr
	}
	e := &Error{Message: err.Error(), Name: fmt.Sprintf("%T", err)}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		e.Code = CodeNotFound
	case errors.Is(err, context.Canceled):
		e.Code = CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		e.Code = CodeTimeout
	}
	return e
}

func fromPanic(r any) *Error {
	e := &Error{Name: fmt.Sprintf("%T", r), Stack: string(debug.Stack())}
	if err, ok := r.(error); ok {
		e.Message = err.Error()
	} else {
		e.Message = fmt.Sprint(r)
	}
	return e
}

func newQueryID() string {
	return uuid.NewString()[:8]
}

func shape(v any) (string, int) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return "", -1
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return "array", rv.Len()
	case reflect.Map:
		return "map", rv.Len()
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "", -1
		}
		return "object", -1
	case reflect.Struct:
		return "object", -1
	default:
		return rv.Kind().String(), -1
	}
}

func isEmpty(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
