package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	X       int
	Y       int
	Width   int
	Height  int
	Primary bool
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	primary, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply()
	var primaryOutput randr.Output
	if err == nil {
		primaryOutput = primary.Output
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		isPrimary := false
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
			isPrimary = crtcInfo.Outputs[0] == primaryOutput
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    outputName,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
			Primary: isPrimary,
		})
	}

	return monitors, nil
}
