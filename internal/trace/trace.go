// Package trace records per-step body states of a simulation as a stream of
// msgpack frames and reads them back.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/b2classic/box2d"
	"github.com/vmihailenco/msgpack/v5"
)

type BodyState struct {
	Name  string  `msgpack:"n"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	Angle float64 `msgpack:"a"`
	Awake bool    `msgpack:"w"`
}

type Frame struct {
	Step   int         `msgpack:"s"`
	Bodies []BodyState `msgpack:"b"`
}

// Snapshot captures the given bodies in order. A body whose user data is a
// string is recorded under that name.
func Snapshot(step int, bodies []*box2d.B2Body) Frame {
	f := Frame{Step: step, Bodies: make([]BodyState, 0, len(bodies))}
	for _, b := range bodies {
		name, _ := b.GetUserData().(string)
		p := b.GetPosition()
		f.Bodies = append(f.Bodies, BodyState{
			Name:  name,
			X:     p.X,
			Y:     p.Y,
			Angle: b.GetAngle(),
			Awake: b.IsAwake(),
		})
	}
	return f
}

// Recorder appends frames to a writer.
type Recorder struct {
	enc    *msgpack.Encoder
	frames int
}

func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: msgpack.NewEncoder(w)}
}

func (r *Recorder) Record(step int, bodies []*box2d.B2Body) error {
	f := Snapshot(step, bodies)
	if err := r.enc.Encode(&f); err != nil {
		return fmt.Errorf("encode frame %d: %w", step, err)
	}
	r.frames++
	return nil
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

// Read decodes every frame in the stream. A stream that ends inside a frame
// returns the complete frames along with io.ErrUnexpectedEOF.
func Read(r io.Reader) ([]Frame, error) {
	br := bufio.NewReader(r)
	dec := msgpack.NewDecoder(br)

	var frames []Frame
	for {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, err
		}

		var f Frame
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return frames, fmt.Errorf("decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}
