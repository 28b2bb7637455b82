// SPDX-License-Identifier: EPL-2.0

package audio

// Property names a value reachable through the typed accessors GetLong,
// GetFloat, GetEnum, GetBool and GetPtr and their setters. Not every
// object supports every property; unsupported combinations fail with
// ErrUnsupportedProp.
type Property int

const (
	PropFrequency Property = iota
	PropLength
	PropPosition
	PropPlaying
	PropAttached
	PropPlayMode
	PropSpeed
	PropGain
	PropPan
	PropDepth
	PropChannels
	PropChannelConf
	PropQuality
	PropFragment
	PropFragments
	PropAvailableFragments
)

func (p Property) String() string {
	names := [...]string{
		"frequency", "length", "position", "playing", "attached", "play mode",
		"speed", "gain", "pan", "depth", "channels", "channel conf", "quality",
		"fragment", "fragments", "available fragments",
	}
	if p < 0 || int(p) >= len(names) {
		return "invalid"
	}
	return names[p]
}

func unsupported(op string, obj any, p Property) error {
	return invalidParam(op, "%w: %s on %T", ErrUnsupportedProp, p, obj)
}

// GetLong reads an integer property.
func GetLong(obj any, p Property) (int, error) {
	const op = "GetLong"

	switch o := obj.(type) {
	case *Sample:
		switch p {
		case PropFrequency:
			return o.Frequency(), nil
		case PropLength:
			return o.Length(), nil
		case PropPosition:
			return o.Position(), nil
		case PropChannels:
			return o.Channels(), nil
		}
	case *Stream:
		switch p {
		case PropFrequency:
			return o.Frequency(), nil
		case PropLength:
			return o.FragmentFrames(), nil
		case PropChannels:
			return o.Channels(), nil
		case PropFragments:
			return o.Fragments(), nil
		case PropAvailableFragments:
			return o.AvailableFragments(), nil
		}
	case *Mixer:
		switch p {
		case PropFrequency:
			return o.Frequency(), nil
		case PropChannels:
			return o.Channels(), nil
		}
	case *Voice:
		switch p {
		case PropFrequency:
			return o.Frequency(), nil
		case PropPosition:
			return o.Position(), nil
		case PropChannels:
			return o.Channels(), nil
		}
	}
	return 0, unsupported(op, obj, p)
}

// SetLong writes an integer property.
func SetLong(obj any, p Property, v int) error {
	const op = "SetLong"

	switch o := obj.(type) {
	case *Sample:
		switch p {
		case PropLength:
			return o.SetLength(v)
		case PropPosition:
			return o.SetPosition(v)
		}
	case *Mixer:
		if p == PropFrequency {
			return o.SetFrequency(v)
		}
	case *Voice:
		if p == PropPosition {
			return o.SetPosition(v)
		}
	}
	return unsupported(op, obj, p)
}

// GetFloat reads a float property.
func GetFloat(obj any, p Property) (float32, error) {
	const op = "GetFloat"

	type floats interface {
		Speed() float32
		Gain() float32
		Pan() float32
	}

	switch o := obj.(type) {
	case floats:
		switch p {
		case PropSpeed:
			return o.Speed(), nil
		case PropGain:
			return o.Gain(), nil
		case PropPan:
			return o.Pan(), nil
		}
	case *Mixer:
		if p == PropGain {
			return o.Gain(), nil
		}
	}
	return 0, unsupported(op, obj, p)
}

// SetFloat writes a float property.
func SetFloat(obj any, p Property, v float32) error {
	const op = "SetFloat"

	type floats interface {
		SetSpeed(float32) error
		SetGain(float32) error
		SetPan(float32) error
	}

	switch o := obj.(type) {
	case floats:
		switch p {
		case PropSpeed:
			return o.SetSpeed(v)
		case PropGain:
			return o.SetGain(v)
		case PropPan:
			return o.SetPan(v)
		}
	case *Mixer:
		if p == PropGain {
			return o.SetGain(v)
		}
	}
	return unsupported(op, obj, p)
}

// GetEnum reads an enumerated property: play mode, depth, channel
// configuration or quality.
func GetEnum(obj any, p Property) (int, error) {
	const op = "GetEnum"

	type formats interface {
		Depth() Depth
		ChannelConf() ChannelConf
	}

	switch p {
	case PropPlayMode:
		switch o := obj.(type) {
		case *Sample:
			return int(o.PlayMode()), nil
		case *Stream:
			return int(o.PlayMode()), nil
		}
	case PropQuality:
		if m, ok := obj.(*Mixer); ok {
			return int(m.Quality()), nil
		}
	case PropDepth:
		if o, ok := obj.(formats); ok {
			return int(o.Depth()), nil
		}
	case PropChannelConf:
		if o, ok := obj.(formats); ok {
			return int(o.ChannelConf()), nil
		}
	}
	return 0, unsupported(op, obj, p)
}

// SetEnum writes an enumerated property.
func SetEnum(obj any, p Property, v int) error {
	const op = "SetEnum"

	switch p {
	case PropPlayMode:
		switch o := obj.(type) {
		case *Sample:
			return o.SetPlayMode(PlayMode(v))
		case *Stream:
			return o.SetPlayMode(PlayMode(v))
		}
	case PropQuality:
		if m, ok := obj.(*Mixer); ok {
			return m.SetQuality(Quality(v))
		}
	}
	return unsupported(op, obj, p)
}

// GetBool reads a boolean property.
func GetBool(obj any, p Property) (bool, error) {
	const op = "GetBool"

	type playable interface {
		Playing() bool
		Attached() bool
	}

	o, ok := obj.(playable)
	if ok {
		switch p {
		case PropPlaying:
			return o.Playing(), nil
		case PropAttached:
			return o.Attached(), nil
		}
	}
	return false, unsupported(op, obj, p)
}

// SetBool writes a boolean property.
func SetBool(obj any, p Property, v bool) error {
	const op = "SetBool"

	type player interface {
		SetPlaying(bool) error
	}

	switch p {
	case PropPlaying:
		if o, ok := obj.(player); ok {
			return o.SetPlaying(v)
		}
	case PropAttached:
		// Only detaching is expressible without naming a parent.
		if v {
			break
		}
		switch o := obj.(type) {
		case *Sample:
			return o.Detach()
		case *Stream:
			return o.Detach()
		case *Mixer:
			return o.Detach()
		case *Voice:
			o.Detach()
			return nil
		}
	}
	return unsupported(op, obj, p)
}

// GetPtr reads a reference property: a stream's next drained fragment,
// returned as []byte, or nil when none is waiting.
func GetPtr(obj any, p Property) (any, error) {
	if o, ok := obj.(*Stream); ok && p == PropFragment {
		if frag := o.Fragment(); frag != nil {
			return frag, nil
		}
		return nil, nil
	}
	return nil, unsupported("GetPtr", obj, p)
}

// SetPtr writes a reference property: a filled stream fragment.
func SetPtr(obj any, p Property, v any) error {
	const op = "SetPtr"

	if o, ok := obj.(*Stream); ok && p == PropFragment {
		frag, ok := v.([]byte)
		if !ok {
			return invalidParam(op, "fragment must be []byte, got %T", v)
		}
		return o.SetFragment(frag)
	}
	return unsupported(op, obj, p)
}
