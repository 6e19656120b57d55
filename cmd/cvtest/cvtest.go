package main

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"gocv.io/x/gocv"

	"github.com/tigerbot-team/tigerbot/shooter/pkg/config"
	"github.com/tigerbot-team/tigerbot/shooter/pkg/rangefinder/camera"
)

// Usage: cvtest camera | cvtest <image file>
//
// Checks the target colour thresholds and focal length against the live
// camera or a saved frame.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: cvtest camera | cvtest <image file>")
		os.Exit(1)
	}
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Println("Failed to load config", err)
		os.Exit(1)
	}
	cam := camera.New(cfg.Camera)

	filename := os.Args[1]
	if filename == "camera" {
		loopReadingCamera(cam, cfg.Camera.Device)
	} else {
		analyzeFile(cam, filename)
	}
}

func loopReadingCamera(cam *camera.Camera, device int) {
	webcam, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		fmt.Printf("error opening video capture device: %v\n", device)
		return
	}
	defer webcam.Close()

	img := gocv.NewMat()
	defer img.Close()

	for {
		// This blocks until the next frame is ready.
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device\n")
			return
		}
		if img.Empty() {
			fmt.Printf("no image on device\n")
			time.Sleep(1 * time.Millisecond)
			continue
		}

		if d, rect, err := cam.Measure(img); err == nil {
			fmt.Printf("Found at %v: %.2fm\n", rect, d)
		} else {
			fmt.Printf("Not found: %v\n", err)
		}
	}
}

func analyzeFile(cam *camera.Camera, filename string) {
	// Read that file (as BGR).
	img := gocv.IMRead(filename, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		fmt.Printf("Failed to read %s\n", filename)
		return
	}
	fmt.Printf("Input size = %v x %v\n", img.Cols(), img.Rows())

	if d, rect, err := cam.Measure(img); err == nil {
		fmt.Printf("Found at %v: %.2fm\n", rect, d)
		gocv.Rectangle(&img, rect, color.RGBA{G: 255, A: 255}, 3)
	} else {
		fmt.Printf("Not found: %v\n", err)
	}

	window := gocv.NewWindow("Target")
	defer window.Close()
	window.ResizeWindow(img.Cols(), img.Rows())
	for {
		window.IMShow(img)
		key := window.WaitKey(0)
		fmt.Printf("Key = %v\n", key)
		if key == 110 {
			break
		}
	}
}
