package binder

import (
	"fmt"
	"reflect"

	"hintbind/marker"
	"hintbind/primitive"
)

// Decode binds values and stores the result into dst, a pointer to the
// struct the target was read from. Hints without a bound value leave their
// field untouched.
func (b *Binder) Decode(values map[string]any, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("binder: decode into %T: need a non-nil struct pointer", dst)
	}

	rv = rv.Elem()
	if b.target.Type != nil && b.target.Type != rv.Type() {
		return fmt.Errorf("binder: decode into %s: target %q was read from %s",
			rv.Type(), b.target.Name, b.target.Type)
	}

	bound, err := b.Bind(values)
	if err != nil {
		return err
	}

	for _, h := range b.target.Hints {
		v, ok := bound[h.Name]
		if !ok {
			continue
		}

		var field reflect.Value

		if h.Index != nil {
			field, err = fieldAt(rv, h.Index)
		} else {
			field = rv.FieldByName(h.Name)
		}

		if err != nil || !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("binder: decode %s.%s: no settable field", b.target.Name, h.Name)
		}

		if err := assign(field, v); err != nil {
			return fmt.Errorf("binder: decode %s.%s: %w", b.target.Name, h.Name, err)
		}
	}

	return nil
}

// fieldAt walks index like reflect.Value.FieldByIndex, allocating nil
// embedded struct pointers on the way down.
func fieldAt(v reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("cannot allocate embedded %s", v.Type().Elem())
				}

				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v, nil
}

// Call binds values and invokes fn, a function of the type the target was
// read from, with the bound values as positional arguments. Optional
// parameters without a value get their zero value.
func (b *Binder) Call(fn any, values map[string]any) ([]any, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("binder: call %T: not a function", fn)
	}

	ft := fv.Type()
	if ft.NumIn() != len(b.target.Hints) {
		return nil, fmt.Errorf("binder: call %s: function takes %d parameters, target %q has %d hints",
			ft, ft.NumIn(), b.target.Name, len(b.target.Hints))
	}

	bound, err := b.Bind(values)
	if err != nil {
		return nil, err
	}

	args := make([]reflect.Value, ft.NumIn())
	for i, h := range b.target.Hints {
		arg := reflect.New(ft.In(i)).Elem()

		if v, ok := bound[h.Name]; ok {
			if err := assign(arg, v); err != nil {
				return nil, fmt.Errorf("binder: call %s: parameter %s: %w", b.target.Name, h.Name, err)
			}
		}

		args[i] = arg
	}

	var results []reflect.Value
	if ft.IsVariadic() {
		results = fv.CallSlice(args)
	} else {
		results = fv.Call(args)
	}

	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Interface()
	}

	return out, nil
}

// assign stores v into dst. Numbers are narrowed with overflow checks and
// values of a kind's canonical type are converted to named types of the
// same kind.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		src := reflect.ValueOf(v)
		if src.Type().AssignableTo(dst.Type()) {
			dst.Set(src)
			return nil
		}

		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}

		dst.Set(elem)

		return nil
	}

	src := reflect.ValueOf(v)
	for src.Kind() == reflect.Pointer && !src.IsNil() && !src.Type().AssignableTo(dst.Type()) {
		src = src.Elem()
	}

	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	kind := primitive.FromReflectType(dst.Type())

	switch kind {
	case primitive.KindAny, primitive.KindSlice, primitive.KindArray, primitive.KindMap:
		if src.Kind() == dst.Kind() && src.Type().ConvertibleTo(dst.Type()) {
			dst.Set(src.Convert(dst.Type()))
			return nil
		}

		if ok, err := assignElements(dst, src); ok {
			return err
		}
	default:
		c, err := marker.NewCoerce(kind, primitive.CategorySafeNumber, primitive.CategoryUnsafeNumber)
		if err != nil {
			return err
		}

		converted, err := c.Apply(src.Interface())
		if err != nil {
			return err
		}

		cv := reflect.ValueOf(converted)
		if cv.Type().ConvertibleTo(dst.Type()) {
			dst.Set(cv.Convert(dst.Type()))
			return nil
		}
	}

	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

// assignElements copies a slice, array or map element by element, so
// decoded documents ([]any, map[string]any) fill typed collections. It
// reports false when dst and src are not collections of matching shape.
func assignElements(dst, src reflect.Value) (bool, error) {
	switch {
	case dst.Kind() == reflect.Slice && (src.Kind() == reflect.Slice || src.Kind() == reflect.Array):
		out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
		if err := assignIndexed(out, src); err != nil {
			return true, err
		}

		dst.Set(out)
	case dst.Kind() == reflect.Array && (src.Kind() == reflect.Slice || src.Kind() == reflect.Array):
		if src.Len() != dst.Len() {
			return true, fmt.Errorf("cannot assign %d elements to %s", src.Len(), dst.Type())
		}

		out := reflect.New(dst.Type()).Elem()
		if err := assignIndexed(out, src); err != nil {
			return true, err
		}

		dst.Set(out)
	case dst.Kind() == reflect.Map && src.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(dst.Type(), src.Len())

		iter := src.MapRange()
		for iter.Next() {
			key := reflect.New(dst.Type().Key()).Elem()
			if err := assign(key, iter.Key().Interface()); err != nil {
				return true, fmt.Errorf("key %v: %w", iter.Key(), err)
			}

			val := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(val, iter.Value().Interface()); err != nil {
				return true, fmt.Errorf("[%v]: %w", iter.Key(), err)
			}

			out.SetMapIndex(key, val)
		}

		dst.Set(out)
	default:
		return false, nil
	}

	return true, nil
}

func assignIndexed(dst, src reflect.Value) error {
	for i := range src.Len() {
		if err := assign(dst.Index(i), src.Index(i).Interface()); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}

	return nil
}
