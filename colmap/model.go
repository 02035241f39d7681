// Package colmap writes sparse reconstructions in COLMAP's text model format.
package colmap

import (
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// Quaternion is a rotation in COLMAP's (QW, QX, QY, QZ) component order.
type Quaternion struct {
	W, X, Y, Z float64
}

// Camera is one line of cameras.txt.
// Params are written as-is so callers control how each value is rendered.
type Camera struct {
	ID     int
	Model  string
	Width  int
	Height int
	Params []string
}

// Image is one entry of images.txt. Rotation and Translation are world-to-camera.
type Image struct {
	ID          int
	Rotation    Quaternion
	Translation r3.Vector
	CameraID    int
	Name        string
}

// Model is the full set of records written to an output directory.
// There are never any 3D points, points3D.txt only carries its header.
type Model struct {
	Cameras []Camera
	Images  []Image
}

func (c Camera) line() string {
	parts := []string{
		strconv.Itoa(c.ID),
		c.Model,
		strconv.Itoa(c.Width),
		strconv.Itoa(c.Height),
	}
	parts = append(parts, c.Params...)
	return strings.Join(parts, " ")
}

func (i Image) line() string {
	return strings.Join([]string{
		strconv.Itoa(i.ID),
		FormatFloat(i.Rotation.W),
		FormatFloat(i.Rotation.X),
		FormatFloat(i.Rotation.Y),
		FormatFloat(i.Rotation.Z),
		FormatFloat(i.Translation.X),
		FormatFloat(i.Translation.Y),
		FormatFloat(i.Translation.Z),
		strconv.Itoa(i.CameraID),
		i.Name,
	}, " ")
}
