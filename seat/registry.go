package seat

import (
	"github.com/bnema/wayloop/internal/arena"
	"github.com/bnema/wayloop/internal/logger"
	"github.com/bnema/wayloop/window"
)

type seatCapability struct {
	seat       SeatID
	capability Capability
}

type pointerEntry struct {
	device Device
	info   PointerInfo
}

// PointerRegistry tracks bound pointer and touch devices. Devices live in an
// arena so windows can hold handles that fail to resolve once the device is
// gone.
type PointerRegistry struct {
	devices  arena.Arena[pointerEntry]
	bySeat   map[seatCapability]arena.Handle
	byDevice map[DeviceID]arena.Handle
}

// NewPointerRegistry returns an empty registry.
func NewPointerRegistry() *PointerRegistry {
	return &PointerRegistry{
		bySeat:   make(map[seatCapability]arena.Handle),
		byDevice: make(map[DeviceID]arena.Handle),
	}
}

// Add registers device for its seat and capability. A device already
// registered for the same seat and capability is released and replaced.
func (r *PointerRegistry) Add(device Device, info PointerInfo) arena.Handle {
	key := seatCapability{device.Seat(), device.Capability()}
	if _, ok := r.bySeat[key]; ok {
		logger.Debugf("seat %d: replacing %s device", key.seat, key.capability)
		r.Remove(key.seat, key.capability)
	}

	h := r.devices.Insert(pointerEntry{device: device, info: info})
	r.bySeat[key] = h
	r.byDevice[device.ID()] = h
	return h
}

// Remove unregisters and releases the device bound for a seat capability,
// returning the pointer info it was registered with.
func (r *PointerRegistry) Remove(seat SeatID, capability Capability) (PointerInfo, bool) {
	key := seatCapability{seat, capability}
	h, ok := r.bySeat[key]
	if !ok {
		return PointerInfo{}, false
	}
	delete(r.bySeat, key)

	entry, ok := r.devices.Remove(h)
	if !ok {
		return PointerInfo{}, false
	}
	delete(r.byDevice, entry.device.ID())

	if err := entry.device.Release(); err != nil {
		logger.Debugf("seat %d: releasing %s device: %v", seat, capability, err)
	}
	return entry.info, true
}

// ByDevice looks a device up by its protocol object.
func (r *PointerRegistry) ByDevice(id DeviceID) (Device, PointerInfo, arena.Handle, bool) {
	h, ok := r.byDevice[id]
	if !ok {
		return nil, PointerInfo{}, arena.Handle{}, false
	}
	entry, ok := r.devices.Get(h)
	if !ok {
		return nil, PointerInfo{}, arena.Handle{}, false
	}
	return entry.device, entry.info, h, true
}

// BySeat returns the device bound for a seat capability.
func (r *PointerRegistry) BySeat(seat SeatID, capability Capability) (Device, arena.Handle, bool) {
	h, ok := r.bySeat[seatCapability{seat, capability}]
	if !ok {
		return nil, arena.Handle{}, false
	}
	entry, ok := r.devices.Get(h)
	if !ok {
		return nil, arena.Handle{}, false
	}
	return entry.device, h, true
}

// Resolve returns the device behind h if it is still registered.
func (r *PointerRegistry) Resolve(h arena.Handle) (Device, bool) {
	entry, ok := r.devices.Get(h)
	if !ok {
		return nil, false
	}
	return entry.device, true
}

// Grab returns the seat and latest serial of the device behind h.
func (r *PointerRegistry) Grab(h arena.Handle) (window.Grab, bool) {
	device, ok := r.Resolve(h)
	if !ok {
		return window.Grab{}, false
	}
	serial, ok := device.LatestSerial()
	if !ok {
		return window.Grab{}, false
	}
	return window.Grab{Seat: uint32(device.Seat()), Serial: serial}, true
}

// Len returns the number of registered devices.
func (r *PointerRegistry) Len() int { return r.devices.Len() }
