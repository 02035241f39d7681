package colmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	CamerasFile  = "cameras.txt"
	ImagesFile   = "images.txt"
	Points3DFile = "points3D.txt"
)

// WriteCameras writes the cameras.txt header followed by one line per camera.
func WriteCameras(w io.Writer, cams []Camera) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# Camera list with one line of data per camera:")
	fmt.Fprintln(bw, "#   CAMERA_ID, MODEL, WIDTH, HEIGHT, PARAMS[]")
	fmt.Fprintf(bw, "# Number of cameras: %d\n", len(cams))

	for _, c := range cams {
		fmt.Fprintln(bw, c.line())
	}

	return bw.Flush()
}

// WriteImages writes the images.txt header followed by a pose line and an empty POINTS2D line
// for each image.
func WriteImages(w io.Writer, imgs []Image) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# Image list with two lines per image:")
	fmt.Fprintln(bw, "#   IMAGE_ID, QW, QX, QY, QZ, TX, TY, TZ, CAMERA_ID, IMAGE_NAME")
	fmt.Fprintln(bw, "#   POINTS2D[] as (X, Y, POINT3D_ID)")
	fmt.Fprintf(bw, "# Number of images: %d, mean observations: 0\n", len(imgs))

	for _, img := range imgs {
		fmt.Fprintln(bw, img.line())
		// no 2D-3D correspondences
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

// WritePoints3D writes an empty points3D.txt.
func WritePoints3D(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# 3D point list with one line of data per point:")
	fmt.Fprintln(bw, "#   POINT3D_ID, X, Y, Z, R, G, B, ERROR, TRACK[] as (IMAGE_ID, POINT2D_IDX)")
	fmt.Fprintln(bw, "# Number of points: 0, mean track length: 0")

	return bw.Flush()
}

// WriteModel creates dir if needed and writes the three model files into it, replacing any
// that already exist.
func WriteModel(dir string, m *Model) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "cannot create model directory %s", dir)
	}

	err := writeFile(filepath.Join(dir, CamerasFile), func(w io.Writer) error {
		return WriteCameras(w, m.Cameras)
	})
	if err != nil {
		return err
	}

	err = writeFile(filepath.Join(dir, ImagesFile), func(w io.Writer) error {
		return WriteImages(w, m.Images)
	})
	if err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, Points3DFile), WritePoints3D)
}

func writeFile(fn string, write func(w io.Writer) error) error {
	//nolint:gosec
	f, err := os.OpenFile(fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", fn)
	}

	err = write(f)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "error writing %s", fn)
	}

	return f.Close()
}
