package poseutils

import (
	"fmt"

	"github.com/golang/geo/r3"
	"go.viam.com/rdk/rimage/transform"
	"go.viam.com/rdk/spatialmath"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/erh/poseutils/colmap"
)

// Rescale returns intrinsics for the same camera at width x height, along with the x and y scale
// factors used. Each axis is scaled independently.
func Rescale(in *transform.PinholeCameraIntrinsics, width, height int) (*transform.PinholeCameraIntrinsics, float64, float64) {
	sx := float64(width) / float64(in.Width)
	sy := float64(height) / float64(in.Height)

	return &transform.PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     in.Fx * sx,
		Fy:     in.Fy * sy,
		Ppx:    in.Ppx * sx,
		Ppy:    in.Ppy * sy,
	}, sx, sy
}

// WorldToCamera inverts a 4x4 (or 3x4) camera-to-world transform, returning the world-to-camera
// rotation as a COLMAP quaternion and the world-to-camera translation.
// The rotation block is assumed orthonormal so its inverse is its transpose.
func WorldToCamera(c2w mat.Matrix) (colmap.Quaternion, r3.Vector, error) {
	r, c := c2w.Dims()
	if r < 3 || c != 4 {
		return colmap.Quaternion{}, r3.Vector{}, fmt.Errorf("camera-to-world matrix is %dx%d, need 4x4", r, c)
	}

	rot := mat.DenseCopyOf(c2w).Slice(0, 3, 0, 3)
	t := mat.NewVecDense(3, []float64{c2w.At(0, 3), c2w.At(1, 3), c2w.At(2, 3)})

	w2cRot := mat.DenseCopyOf(rot.T())

	w2cT := mat.NewVecDense(3, nil)
	w2cT.MulVec(w2cRot, t)
	w2cT.ScaleVec(-1, w2cT)

	// spatialmath stores rotation matrices column by column
	cols := make([]float64, 0, 9)
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			cols = append(cols, w2cRot.At(i, j))
		}
	}

	rm, err := spatialmath.NewRotationMatrix(cols)
	if err != nil {
		return colmap.Quaternion{}, r3.Vector{}, err
	}

	return toColmap(rm.Quaternion()), r3.Vector{X: w2cT.AtVec(0), Y: w2cT.AtVec(1), Z: w2cT.AtVec(2)}, nil
}

// CameraToWorld is the inverse of WorldToCamera.
func CameraToWorld(q colmap.Quaternion, t r3.Vector) *mat.Dense {
	rm := spatialmath.QuatToRotationMatrix(fromColmap(q))

	// Row(i) is column i of the world-to-camera rotation, so row i of its transpose
	c2wRot := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		axis := rm.Row(i)
		c2wRot.SetRow(i, []float64{axis.X, axis.Y, axis.Z})
	}

	c2wT := mat.NewVecDense(3, nil)
	c2wT.MulVec(c2wRot, mat.NewVecDense(3, []float64{t.X, t.Y, t.Z}))
	c2wT.ScaleVec(-1, c2wT)

	out := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		out.SetRow(i, []float64{c2wRot.At(i, 0), c2wRot.At(i, 1), c2wRot.At(i, 2), c2wT.AtVec(i)})
	}
	out.Set(3, 3, 1)
	return out
}

// toColmap maps gonum's (Real, Imag, Jmag, Kmag) onto COLMAP's documented (QW, QX, QY, QZ)
// order. q and -q are the same rotation, QW is kept non-negative.
func toColmap(q quat.Number) colmap.Quaternion {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return colmap.Quaternion{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

func fromColmap(q colmap.Quaternion) quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}
