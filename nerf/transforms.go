// Package nerf reads the transforms.json files produced by NeRF style capture pipelines.
package nerf

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/rdk/rimage/transform"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// DefaultCameraModel is used when a transforms file does not name its camera model.
const DefaultCameraModel = "OPENCV"

// Transforms is the scene level intrinsics plus one record per captured frame.
// Pointer and json.Number fields are required, a nil or empty value means the key was absent.
type Transforms struct {
	CameraModel string `json:"camera_model"`

	W   *float64 `json:"w"`
	H   *float64 `json:"h"`
	FlX *float64 `json:"fl_x"`
	FlY *float64 `json:"fl_y"`
	Cx  *float64 `json:"cx"`
	Cy  *float64 `json:"cy"`

	// distortion keeps the literal from the file so it can be written back unchanged
	K1 json.Number `json:"k1"`
	K2 json.Number `json:"k2"`
	P1 json.Number `json:"p1"`
	P2 json.Number `json:"p2"`

	// nil when the file has no frames key, empty when the list is empty
	Frames []Frame `json:"frames"`
}

// Frame is a single captured image and its camera-to-world transform.
type Frame struct {
	ID              json.Number `json:"colmap_im_id"`
	FilePath        string      `json:"file_path"`
	TransformMatrix [][]float64 `json:"transform_matrix"`
}

// Load reads and validates a transforms file.
func Load(fn string) (*Transforms, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening transforms file")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	t, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", fn)
	}
	return t, nil
}

// Decode parses and validates a transforms document.
func Decode(r io.Reader) (*Transforms, error) {
	t := &Transforms{}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(t); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every required field is present and well formed.
func (t *Transforms) Validate() error {
	missing := []string{}

	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"w", t.W}, {"h", t.H},
		{"fl_x", t.FlX}, {"fl_y", t.FlY},
		{"cx", t.Cx}, {"cy", t.Cy},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}

	for _, f := range []struct {
		name string
		v    json.Number
	}{
		{"k1", t.K1}, {"k2", t.K2}, {"p1", t.P1}, {"p2", t.P2},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}

	if t.Frames == nil {
		missing = append(missing, "frames")
	}

	if len(missing) > 0 {
		return fmt.Errorf("transforms is missing required field(s): %s", strings.Join(missing, ", "))
	}

	// pixel counts, scaling by a fractional or zero size makes no sense
	for _, v := range []float64{*t.W, *t.H} {
		if v < 1 || v != math.Trunc(v) {
			return fmt.Errorf("invalid resolution %vx%v", *t.W, *t.H)
		}
	}

	for idx := range t.Frames {
		if err := t.Frames[idx].Validate(); err != nil {
			return fmt.Errorf("frame %d: %w", idx, err)
		}
	}

	return nil
}

// Model returns the camera model, falling back to DefaultCameraModel.
func (t *Transforms) Model() string {
	if t.CameraModel == "" {
		return DefaultCameraModel
	}
	return t.CameraModel
}

// Intrinsics returns the pinhole parameters at the capture resolution.
func (t *Transforms) Intrinsics() *transform.PinholeCameraIntrinsics {
	return &transform.PinholeCameraIntrinsics{
		Width:  int(*t.W),
		Height: int(*t.H),
		Fx:     *t.FlX,
		Fy:     *t.FlY,
		Ppx:    *t.Cx,
		Ppy:    *t.Cy,
	}
}

// DistortionLiterals returns k1, k2, p1, p2 exactly as they appear in the file.
func (t *Transforms) DistortionLiterals() []json.Number {
	return []json.Number{t.K1, t.K2, t.P1, t.P2}
}

// Validate checks the frame has an integer id, a file path and a 4x4 (or 3x4) matrix.
func (f *Frame) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("missing required field colmap_im_id")
	}
	if _, err := f.ImageID(); err != nil {
		return err
	}
	if f.FilePath == "" {
		return fmt.Errorf("missing required field file_path")
	}
	if f.TransformMatrix == nil {
		return fmt.Errorf("missing required field transform_matrix")
	}

	rows := len(f.TransformMatrix)
	if rows != 3 && rows != 4 {
		return fmt.Errorf("transform_matrix has %d rows, need 4", rows)
	}
	for i, row := range f.TransformMatrix {
		if len(row) != 4 {
			return fmt.Errorf("transform_matrix row %d has %d columns, need 4", i, len(row))
		}
	}

	return nil
}

// ImageID returns colmap_im_id as an integer.
func (f *Frame) ImageID() (int, error) {
	id, err := f.ID.Int64()
	if err != nil {
		return 0, fmt.Errorf("colmap_im_id %q is not an integer", f.ID)
	}
	return int(id), nil
}

// ImageName is the base name of the frame's image, which is how COLMAP refers to it.
func (f *Frame) ImageName() string {
	return path.Base(f.FilePath)
}

// CameraToWorld returns the frame transform as a 4x4 matrix, filling in the homogeneous row if the
// file only had 3 rows.
func (f *Frame) CameraToWorld() (*mat.Dense, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	m := mat.NewDense(4, 4, nil)
	m.Set(3, 3, 1)
	for i, row := range f.TransformMatrix {
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return m, nil
}
