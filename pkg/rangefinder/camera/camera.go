// Package camera measures the distance to the speaker target from the
// apparent size of its coloured marker.
package camera

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/rangefinder"
)

// processingWidth is the width frames are scaled to before masking.
const processingWidth = 320

type HSVRange struct {
	HueMin, HueMax byte
	SatMin, SatMax byte
	ValMin, ValMax byte
}

// Camera runs a capture loop in the background.  Distance never blocks; it
// returns the smoothed last good measurement.
type Camera struct {
	cfg     config.Camera
	hsv     HSVRange
	tracker *rangefinder.Tracker
}

var _ rangefinder.Source = (*Camera)(nil)

func New(cfg config.Camera) *Camera {
	return &Camera{
		cfg: cfg,
		hsv: HSVRange{
			HueMin: cfg.HueMin, HueMax: cfg.HueMax,
			SatMin: cfg.SatMin, SatMax: cfg.SatMax,
			ValMin: cfg.ValMin, ValMax: cfg.ValMax,
		},
		tracker: rangefinder.NewTracker(cfg.FallbackDistanceM, 0.3),
	}
}

func (c *Camera) Distance() float64 {
	return c.tracker.Distance()
}

// Run captures frames until the context is done.
func (c *Camera) Run(ctx context.Context) error {
	webcam, err := gocv.VideoCaptureDevice(c.cfg.Device)
	if err != nil {
		return errors.Wrapf(err, "failed to open video capture device %d", c.cfg.Device)
	}
	defer webcam.Close()

	webcam.Set(gocv.VideoCaptureFPS, float64(c.cfg.FPS))

	img := gocv.NewMat()
	defer img.Close()

	for ctx.Err() == nil {
		// This blocks until the next frame is ready.
		if ok := webcam.Read(&img); !ok || img.Empty() {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if d, _, err := c.Measure(img); err == nil {
			c.tracker.Record(d, time.Now())
		}
	}
	return ctx.Err()
}

// Measure finds the target in a single BGR frame and returns its distance
// and bounding box, in full-resolution pixels.
func (c *Camera) Measure(img gocv.Mat) (float64, image.Rectangle, error) {
	scale := float64(processingWidth) / float64(img.Cols())
	hsv := scaleAndConvertToHSV(img, scale)
	defer hsv.Close()

	rect, err := findTarget(hsv, &c.hsv)
	if err != nil {
		return 0, image.Rectangle{}, err
	}
	rect = image.Rect(
		int(float64(rect.Min.X)/scale), int(float64(rect.Min.Y)/scale),
		int(float64(rect.Max.X)/scale), int(float64(rect.Max.Y)/scale),
	)
	d, ok := rangefinder.PinholeDistance(c.cfg.FocalLengthPx, c.cfg.TargetHeightM, rect.Dy())
	if !ok {
		return 0, rect, errors.New("target has no height")
	}
	return d, rect, nil
}

func scaleAndConvertToHSV(img gocv.Mat, scaleFactor float64) gocv.Mat {
	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(img, &scaled, image.Point{}, scaleFactor, scaleFactor, gocv.InterpolationLinear)

	hsv := gocv.NewMat()
	gocv.CvtColor(scaled, &hsv, gocv.ColorBGRToHSV)
	return hsv
}

func hsvMaskNoWrapAround(hsv gocv.Mat, r *HSVRange) gocv.Mat {
	lb, _ := gocv.NewMatFromBytes(1, 3, gocv.MatTypeCV8U, []byte{r.HueMin, r.SatMin, r.ValMin})
	defer lb.Close()
	ub, _ := gocv.NewMatFromBytes(1, 3, gocv.MatTypeCV8U, []byte{r.HueMax, r.SatMax, r.ValMax})
	defer ub.Close()
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	gocv.InRange(hsv, lb, ub, &mask)
	return mask
}

// hsvMask handles hue ranges that wrap through red.
func hsvMask(hsv gocv.Mat, r *HSVRange) gocv.Mat {
	if r.HueMax > r.HueMin {
		return hsvMaskNoWrapAround(hsv, r)
	}
	upper := *r
	upper.HueMax = 180
	mask1 := hsvMaskNoWrapAround(hsv, &upper)
	defer mask1.Close()
	lower := *r
	lower.HueMin = 0
	mask2 := hsvMaskNoWrapAround(hsv, &lower)
	defer mask2.Close()
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)
	gocv.BitwiseOr(mask1, mask2, &mask)
	return mask
}

func findTarget(hsv gocv.Mat, r *HSVRange) (image.Rectangle, error) {
	mask := hsvMask(hsv, r)
	defer mask.Close()

	// Two iterations each of erosion and dilation, to remove noise.
	nullMat := gocv.NewMat()
	defer nullMat.Close()
	gocv.Erode(mask, &mask, nullMat)
	gocv.Erode(mask, &mask, nullMat)
	gocv.Dilate(mask, &mask, nullMat)
	gocv.Dilate(mask, &mask, nullMat)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return image.Rectangle{}, errors.New("didn't find any contours")
	}

	var (
		maxArea float64
		largest = -1
	)
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > maxArea {
			maxArea = area
			largest = i
		}
	}
	if largest < 0 {
		return image.Rectangle{}, errors.New("contours have no area")
	}
	rect := gocv.BoundingRect(contours.At(largest))
	if rect.Dx() < 6 || rect.Dy() < 6 {
		return image.Rectangle{}, errors.New("largest contour too small")
	}
	return rect, nil
}
