package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/teodori/go-brick/brick/backend"
	"github.com/teodori/go-brick/brick/video"
)

// SnapshotConfig controls periodic frame snapshots.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // save a snapshot every N frames
	Directory string // where the snapshot files go
	ROMName   string // prefix for snapshot filenames
}

// Backend runs without any display: it counts frames, optionally writes
// text snapshots, and requests quit once the frame budget is spent. Used
// for automated testing and batch runs.
type Backend struct {
	config         backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config
	slog.Info("Running headless",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

func (h *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, bool, error) {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.snapshotConfig.Interval > 0 && h.frameCount%h.snapshotConfig.Interval == 0 {
		path := filepath.Join(h.snapshotConfig.Directory,
			fmt.Sprintf("%s_frame_%d.txt", h.snapshotConfig.ROMName, h.frameCount))
		if err := saveSnapshot(frame, path, h.frameCount); err != nil {
			slog.Error("Failed to save snapshot", "frame", h.frameCount, "path", path, "error", err)
		} else {
			slog.Info("Saved frame snapshot", "frame", h.frameCount, "path", path)
		}
	}

	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	return nil, h.frameCount >= h.maxFrames, nil
}

func (h *Backend) Cleanup() error {
	slog.Info("Headless run completed", "frames", h.frameCount)
	return nil
}

// saveSnapshot writes the frame as half-block text, two pixel rows per line.
func saveSnapshot(frame *video.FrameBuffer, path string, frameNumber int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "# Frame %d, %dx%d pixels\n", frameNumber, frame.Width(), frame.Height())
	for _, line := range backend.RenderFrameToHalfBlocks(frame) {
		fmt.Fprintln(file, line)
	}

	return nil
}
