// Package gltfcam lists the cameras in a glTF scene and where they are placed.
package gltfcam

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// DefaultAsset is the scene inspected when no path is given.
const DefaultAsset = "/data1/pjs/tmpuoq537ox_scene.glb"

// CameraNode is a scene node that places a camera.
// Rotation is (x, y, z, w) as stored in glTF.
type CameraNode struct {
	Index       int
	Name        string
	Camera      int
	Translation [3]float64
	Rotation    [4]float64
	Scale       [3]float64
}

// Load opens a .glb or .gltf file.
func Load(fn string) (*gltf.Document, error) {
	doc, err := gltf.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s", fn)
	}
	return doc, nil
}

// CameraNodes returns every node that references a camera, in node order.
// Omitted transform fields come back as the glTF defaults.
func CameraNodes(doc *gltf.Document) []CameraNode {
	nodes := []CameraNode{}
	for idx, n := range doc.Nodes {
		if n == nil || n.Camera == nil {
			continue
		}
		nodes = append(nodes, CameraNode{
			Index:       idx,
			Name:        n.Name,
			Camera:      *n.Camera,
			Translation: n.TranslationOrDefault(),
			Rotation:    n.RotationOrDefault(),
			Scale:       n.ScaleOrDefault(),
		})
	}
	return nodes
}

// DescribeCamera returns the camera as it appears in the glTF json.
func DescribeCamera(c *gltf.Camera) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Print writes a human readable summary of the document's cameras to out.
func Print(out io.Writer, doc *gltf.Document) error {
	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "Number of cameras: %d\n", len(doc.Cameras))

	for i, c := range doc.Cameras {
		desc, err := DescribeCamera(c)
		if err != nil {
			return fmt.Errorf("camera %d: %w", i, err)
		}
		fmt.Fprintf(w, "\nCamera %d:\n%s\n", i, desc)
	}

	for _, n := range CameraNodes(doc) {
		fmt.Fprintf(w, "\nCamera Node %d:\n", n.Index)
		fmt.Fprintf(w, "Camera index: %d\n", n.Camera)
		fmt.Fprintf(w, "Translation (position): %v\n", n.Translation)
		fmt.Fprintf(w, "Rotation (quaternion): %v\n", n.Rotation)
		fmt.Fprintf(w, "Scale: %v\n", n.Scale)
	}

	return w.Flush()
}
