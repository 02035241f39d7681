package poseutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	"github.com/erh/poseutils/colmap"
	"github.com/erh/poseutils/nerf"
)

const simpleTransforms = `{
  "w": 1920, "h": 1080,
  "fl_x": 1000, "fl_y": 1000,
  "cx": 960, "cy": 540,
  "k1": 0, "k2": 0, "p1": 0, "p2": 0,
  "frames": [
    {
      "colmap_im_id": 1,
      "file_path": "/a/b/img0.png",
      "transform_matrix": [[1, 0, 0, 0], [0, 1, 0, 0], [0, 0, 1, 0], [0, 0, 0, 1]]
    }
  ]
}`

func writeTransforms(t *testing.T, data string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "transforms.json")
	test.That(t, os.WriteFile(fn, []byte(data), 0o644), test.ShouldBeNil)
	return fn
}

func readLines(t *testing.T, fn string) []string {
	t.Helper()
	data, err := os.ReadFile(fn)
	test.That(t, err, test.ShouldBeNil)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestExportColmapSimple(t *testing.T) {
	logger := logging.NewTestLogger(t)

	out := filepath.Join(t.TempDir(), "model")
	err := ExportColmap(writeTransforms(t, simpleTransforms), out, logger)
	test.That(t, err, test.ShouldBeNil)

	cams := readLines(t, filepath.Join(out, colmap.CamerasFile))
	test.That(t, cams, test.ShouldHaveLength, 4)
	test.That(t, cams[2], test.ShouldEqual, "# Number of cameras: 1")
	test.That(t, cams[3], test.ShouldEqual, "1 OPENCV 960 540 500.0 500.0 480.0 270.0 0 0 0 0")

	imgs := readLines(t, filepath.Join(out, colmap.ImagesFile))
	test.That(t, imgs, test.ShouldHaveLength, 6)
	test.That(t, imgs[3], test.ShouldEqual, "# Number of images: 1, mean observations: 0")
	test.That(t, imgs[4], test.ShouldStartWith, "1 1.0 0.0 0.0 0.0 ")
	test.That(t, imgs[4], test.ShouldEndWith, " 1 img0.png")
	test.That(t, imgs[5], test.ShouldEqual, "")

	pts := readLines(t, filepath.Join(out, colmap.Points3DFile))
	test.That(t, pts, test.ShouldHaveLength, 3)
	test.That(t, pts[2], test.ShouldEqual, "# Number of points: 0, mean track length: 0")
}

func TestBuildModelFrames(t *testing.T) {
	tf, err := nerf.Decode(strings.NewReader(`{
	  "camera_model": "OPENCV",
	  "w": 1280, "h": 720,
	  "fl_x": 900.5, "fl_y": 901.25,
	  "cx": 640, "cy": 360,
	  "k1": -0.05, "k2": 0.0125, "p1": 0.0, "p2": 1e-05,
	  "frames": [
	    {"colmap_im_id": 3, "file_path": "images/c.jpg", "transform_matrix": [[0, -1, 0, 1], [1, 0, 0, 2], [0, 0, 1, 3], [0, 0, 0, 1]]},
	    {"colmap_im_id": 1, "file_path": "images/a.jpg", "transform_matrix": [[1, 0, 0, 0], [0, 1, 0, 0], [0, 0, 1, 0], [0, 0, 0, 1]]},
	    {"colmap_im_id": 2, "file_path": "b.jpg", "transform_matrix": [[1, 0, 0, 5], [0, 1, 0, 0], [0, 0, 1, 0]]}
	  ]
	}`))
	test.That(t, err, test.ShouldBeNil)

	m, err := BuildModel(tf, TargetWidth, TargetHeight, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, m.Cameras, test.ShouldHaveLength, 1)
	cam := m.Cameras[0]
	test.That(t, cam.Width, test.ShouldEqual, 960)
	test.That(t, cam.Height, test.ShouldEqual, 540)
	// distortion is copied as written
	test.That(t, cam.Params[4:], test.ShouldResemble, []string{"-0.05", "0.0125", "0.0", "1e-05"})
	test.That(t, cam.Params[0], test.ShouldEqual, colmap.FormatFloat(900.5*0.75))
	test.That(t, cam.Params[1], test.ShouldEqual, colmap.FormatFloat(901.25*0.75))
	test.That(t, cam.Params[2], test.ShouldEqual, "480.0")
	test.That(t, cam.Params[3], test.ShouldEqual, "270.0")

	test.That(t, m.Images, test.ShouldHaveLength, 3)
	ids := []int{}
	names := []string{}
	for _, img := range m.Images {
		ids = append(ids, img.ID)
		names = append(names, img.Name)
		test.That(t, img.CameraID, test.ShouldEqual, ColmapCameraID)
	}
	test.That(t, ids, test.ShouldResemble, []int{3, 1, 2})
	test.That(t, names, test.ShouldResemble, []string{"c.jpg", "a.jpg", "b.jpg"})

	// translation is not rescaled
	test.That(t, m.Images[2].Translation.X, test.ShouldAlmostEqual, -5)
}

func TestExportColmapImageCount(t *testing.T) {
	frames := []string{}
	for i := 1; i <= 5; i++ {
		frames = append(frames, fmt.Sprintf(
			`{"colmap_im_id": %d, "file_path": "f%d.png", "transform_matrix": [[1,0,0,0],[0,1,0,%d],[0,0,1,0],[0,0,0,1]]}`, i, i, i))
	}
	data := fmt.Sprintf(`{"w": 1920, "h": 1080, "fl_x": 1, "fl_y": 1, "cx": 1, "cy": 1, "k1": 0, "k2": 0, "p1": 0, "p2": 0, "frames": [%s]}`,
		strings.Join(frames, ","))

	out := t.TempDir()
	test.That(t, ExportColmap(writeTransforms(t, data), out, logging.NewTestLogger(t)), test.ShouldBeNil)

	lines := readLines(t, filepath.Join(out, colmap.ImagesFile))
	test.That(t, lines[3], test.ShouldEqual, "# Number of images: 5, mean observations: 0")

	poses := 0
	for _, l := range lines[4:] {
		if l != "" {
			poses++
		}
	}
	test.That(t, poses, test.ShouldEqual, 5)
}

func TestExportColmapMissingField(t *testing.T) {
	data := strings.Replace(simpleTransforms, `"fl_y": 1000,`, "", 1)

	out := filepath.Join(t.TempDir(), "model")
	err := ExportColmap(writeTransforms(t, data), out, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "fl_y")

	_, err = os.Stat(out)
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestBuildModelDistortionLiterals(t *testing.T) {
	data := strings.Replace(simpleTransforms, `"k1": 0, "k2": 0, "p1": 0, "p2": 0`, `"k1": 1e-5, "k2": 0.10, "p1": -0, "p2": 2E+1`, 1)
	tf, err := nerf.Decode(strings.NewReader(data))
	test.That(t, err, test.ShouldBeNil)

	m, err := BuildModel(tf, TargetWidth, TargetHeight, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	// written exactly as they appear in the file, not re-rendered
	test.That(t, m.Cameras[0].Params[4:], test.ShouldResemble, []string{"1e-5", "0.10", "-0", "2E+1"})
}

func TestExportColmapBadResolution(t *testing.T) {
	for _, w := range []string{"0.5", "1921.5", "0", "-1920"} {
		t.Run(w, func(t *testing.T) {
			data := strings.Replace(simpleTransforms, `"w": 1920`, `"w": `+w, 1)

			out := filepath.Join(t.TempDir(), "model")
			err := ExportColmap(writeTransforms(t, data), out, logging.NewTestLogger(t))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, "invalid resolution")

			_, err = os.Stat(out)
			test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
		})
	}
}
