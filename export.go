// Package poseutils converts camera poses between NeRF transforms files and COLMAP text models.
package poseutils

import (
	"fmt"

	"go.viam.com/rdk/logging"

	"github.com/erh/poseutils/colmap"
	"github.com/erh/poseutils/nerf"
)

// Resolution every exported model is rescaled to.
const (
	TargetWidth  = 960
	TargetHeight = 540
)

// ColmapCameraID is the id of the single shared camera every image refers to.
const ColmapCameraID = 1

// BuildModel rescales the scene intrinsics to width x height and converts every frame to a
// world-to-camera image entry, keeping frame order. Translations are left in scene units.
func BuildModel(t *nerf.Transforms, width, height int, logger logging.Logger) (*colmap.Model, error) {
	in := t.Intrinsics()
	intrinsics, sx, sy := Rescale(in, width, height)
	logger.Debugf("rescaling %dx%d -> %dx%d (%v, %v)", in.Width, in.Height, width, height, sx, sy)

	params := []string{
		colmap.FormatFloat(intrinsics.Fx),
		colmap.FormatFloat(intrinsics.Fy),
		colmap.FormatFloat(intrinsics.Ppx),
		colmap.FormatFloat(intrinsics.Ppy),
	}
	// OPENCV distortion does not depend on resolution, the literals are copied through untouched
	for _, d := range t.DistortionLiterals() {
		params = append(params, d.String())
	}

	m := &colmap.Model{
		Cameras: []colmap.Camera{{
			ID:     ColmapCameraID,
			Model:  t.Model(),
			Width:  width,
			Height: height,
			Params: params,
		}},
		Images: make([]colmap.Image, 0, len(t.Frames)),
	}

	for idx := range t.Frames {
		f := &t.Frames[idx]

		c2w, err := f.CameraToWorld()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", idx, err)
		}

		id, err := f.ImageID()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", idx, err)
		}

		q, tr, err := WorldToCamera(c2w)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", idx, err)
		}

		m.Images = append(m.Images, colmap.Image{
			ID:          id,
			Rotation:    q,
			Translation: tr,
			CameraID:    ColmapCameraID,
			Name:        f.ImageName(),
		})
	}

	return m, nil
}

// ExportColmap reads a transforms file and writes a COLMAP text model for it into outputDir.
func ExportColmap(transformsPath, outputDir string, logger logging.Logger) error {
	t, err := nerf.Load(transformsPath)
	if err != nil {
		return err
	}

	m, err := BuildModel(t, TargetWidth, TargetHeight, logger)
	if err != nil {
		return err
	}

	err = colmap.WriteModel(outputDir, m)
	if err != nil {
		return err
	}

	logger.Infof("wrote %d images to %s", len(m.Images), outputDir)
	return nil
}
