package devices

import (
	"log"

	"github.com/pkg/errors"
)

// Device represents a peripheral device.
// The CPU reaches it through syscalls.
type Device interface {
	// ID yields the manufacturer and serial number for the device.
	ID() ID

	// Startup initializes internal resources.
	Startup() error

	// Shutdown cleans up internal resources.
	Shutdown() error
}

// Map contains a list of registered peripherals.
type Map []Device

// Connect adds the given device to the device map.
// Returns false if the device type is already present in the set.
func (dm *Map) Connect(dev Device) bool {
	if (*dm).Find(dev.ID()) > -1 {
		return false
	}

	*dm = append(*dm, dev)
	return true
}

// Startup initializes internal resources.
func (dm Map) Startup() error {
	var errorset ErrorSet

	for _, dev := range dm {
		log.Println(dev.ID(), "startup")
		if err := dev.Startup(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	return errorset.Err()
}

// Shutdown cleans up internal resources.
func (dm Map) Shutdown() error {
	var errorset ErrorSet

	for _, dev := range dm {
		log.Println(dev.ID(), "shutdown")
		if err := dev.Shutdown(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	return errorset.Err()
}

// Find returns the index for the device with the given id.
// Returns -1 if it can't be found.
func (dm Map) Find(id ID) int {
	for i, dev := range dm {
		if dev.ID() == id {
			return i
		}
	}
	return -1
}
