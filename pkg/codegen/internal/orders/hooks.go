// Package orders holds code generated from orders.accel together with hand-written callbacks.
package orders

//go:generate go run ../../../../cmd/accelc orders.accel

import (
	"strings"

	"github.com/pkg/errors"
)

// BeforeMarshalAccel keeps stock keeping units upper case on the wire.
func (m *OrderLine) BeforeMarshalAccel() {
	m.Sku = strings.ToUpper(m.Sku)
}

// AfterUnmarshalAccel rejects orders with a negative total.
func (m *Order) AfterUnmarshalAccel() error {
	if m.Total < 0 {
		return errors.Errorf("negative total %d", m.Total)
	}
	return nil
}
