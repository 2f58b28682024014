package trace_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/b2classic/box2d"
	"github.com/b2classic/box2d/internal/trace"
)

func TestRecordAndRead(t *testing.T) {
	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, -10))

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position.Set(1, 5)
	ball := world.CreateBody(&bd)
	ball.SetUserData("ball")

	circle := box2d.MakeB2CircleShape()
	circle.M_radius = 0.5
	ball.CreateFixture(&circle, 1)

	var buf bytes.Buffer
	rec := trace.NewRecorder(&buf)
	bodies := []*box2d.B2Body{ball}

	for i := 0; i < 10; i++ {
		world.Step(1.0/60.0, 8, 3)
		if err := rec.Record(i, bodies); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if rec.Frames() != 10 {
		t.Fatalf("frames = %d", rec.Frames())
	}

	frames, err := trace.Read(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(frames) != 10 {
		t.Fatalf("read %d frames, want 10", len(frames))
	}

	last := frames[9]
	if last.Step != 9 || len(last.Bodies) != 1 {
		t.Fatalf("last frame = %+v", last)
	}
	got := last.Bodies[0]
	p := ball.GetPosition()
	if got.Name != "ball" || got.X != p.X || got.Y != p.Y || !got.Awake {
		t.Fatalf("state = %+v, body at %v", got, p)
	}
	if frames[0].Bodies[0].Y <= got.Y {
		t.Fatalf("ball did not fall: %v then %v", frames[0].Bodies[0].Y, got.Y)
	}
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	rec := trace.NewRecorder(&buf)
	if err := rec.Record(0, nil); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := rec.Record(1, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	data := buf.Bytes()
	frames, err := trace.Read(bytes.NewReader(data[:len(data)-1]))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want unexpected EOF", err)
	}
	if len(frames) != 1 {
		t.Fatalf("kept %d frames before the error", len(frames))
	}
}
