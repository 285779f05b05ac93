package session

import (
	"context"
	"fmt"
)

// Device identifies one piece of capture hardware.
type Device string

const (
	DeviceCamera     Device = "camera"
	DeviceMicrophone Device = "microphone"
)

// PermissionDeniedError means the candidate explicitly declined access.
type PermissionDeniedError struct{ Device Device }

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s access denied", e.Device)
}

// DeviceError is any acquisition failure other than an explicit denial.
// The gate fails closed on it.
type DeviceError struct {
	Device Device
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// MediaProber briefly acquires and immediately releases one device, purely
// to elicit the platform permission prompt and observe the outcome.
type MediaProber interface {
	Probe(ctx context.Context, d Device) error
}

// Permissions is the gate's verdict.
type Permissions struct {
	CameraGranted     bool `json:"cameraGranted"`
	MicrophoneGranted bool `json:"microphoneGranted"`
}

// Gate verifies camera and microphone availability before a session may
// start.
type Gate struct{ prober MediaProber }

func NewGate(p MediaProber) *Gate { return &Gate{prober: p} }

// Request probes both devices. The first failure wins; a session must not
// proceed with partial grants.
func (g *Gate) Request(ctx context.Context) (Permissions, error) {
	var perms Permissions
	if g == nil || g.prober == nil {
		return perms, &DeviceError{Device: DeviceCamera, Err: fmt.Errorf("no media prober wired")}
	}
	if err := g.prober.Probe(ctx, DeviceCamera); err != nil {
		return perms, err
	}
	perms.CameraGranted = true
	if err := g.prober.Probe(ctx, DeviceMicrophone); err != nil {
		return perms, err
	}
	perms.MicrophoneGranted = true
	return perms, nil
}

// reportedProber answers from a client-reported permission snapshot: the
// browser performs the real getUserMedia probe and relays the outcome.
type reportedProber struct{ perms Permissions }

// NewReportedProber wraps an already-observed permission outcome.
func NewReportedProber(perms Permissions) MediaProber {
	return reportedProber{perms: perms}
}

func (p reportedProber) Probe(_ context.Context, d Device) error {
	switch d {
	case DeviceCamera:
		if !p.perms.CameraGranted {
			return &PermissionDeniedError{Device: DeviceCamera}
		}
	case DeviceMicrophone:
		if !p.perms.MicrophoneGranted {
			return &PermissionDeniedError{Device: DeviceMicrophone}
		}
	default:
		return &DeviceError{Device: d, Err: fmt.Errorf("unknown device")}
	}
	return nil
}
