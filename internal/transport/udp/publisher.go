// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "github.com/p-hlp/rtff/internal/log"
	"github.com/p-hlp/rtff/internal/transport"
)

// UDPPublisher periodically fetches the latest spectrum magnitudes from
// a SpectrumProvider, packs them into a defined binary format, and
// sends them over UDP using a UDPSender. It runs in a separate
// goroutine managed by Start and Stop methods.
type UDPPublisher struct {
	sender   *UDPSender
	spectrum transport.SpectrumProvider
	channel  int
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum uint32

	// Pre-allocated buffers to avoid allocations in the hot path
	// (buildAndSendPacket).
	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

// NewUDPPublisher creates and initializes a new UDPPublisher that
// publishes channel's magnitude spectrum from spectrum at interval.
// If interval is invalid (<= 0), it defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender *UDPSender, spectrum transport.SpectrumProvider, channel int) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if spectrum == nil {
		return nil, fmt.Errorf("UDPPublisher: spectrum provider cannot be nil")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	requiredLen := spectrum.SpectrumSize()
	applog.Infof("UDPPublisher: Initializing (Interval: %s, Spectrum Bins: %d)", interval, requiredLen)

	return &UDPPublisher{
		sender:       sender,
		spectrum:     spectrum,
		channel:      channel,
		interval:     interval,
		f32Buffer:    make([]float32, requiredLen),
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start begins the periodic publishing process. It is safe to call
// Start multiple times; subsequent calls are no-ops if already
// running.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Infof("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and
// waits for it to exit. It is safe to call Stop multiple times.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDPPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		applog.Infof("UDPPublisher: Initiating stop sequence...")
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	applog.Debugf("UDPPublisher: Waiting for publisher goroutine to finish...")
	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Magnitude Count   | uint16         | 2            | Number of floats (N)    |
| Magnitudes        | []float32      | N * 4        | Array of spectrum bins  |
+-----------------------------------------------------------------------------+
*/

// buildAndSendPacket fetches the latest magnitudes, packs them into a
// binary packet, and sends it via the UDPSender.
func (p *UDPPublisher) buildAndSendPacket() {
	mags := p.spectrum.Magnitudes(p.channel)
	if len(p.f32Buffer) != len(mags) {
		p.f32Buffer = make([]float32, len(mags))
	}
	copy(p.f32Buffer, mags)

	p.sequenceNum++
	timestamp := time.Now().UnixNano()
	magnitudeCount := uint16(len(p.f32Buffer))

	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, magnitudeCount)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer)
	}
	if err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return
	}

	packetBytes := p.packetBuffer.Bytes()
	if err := p.sender.Send(packetBytes); err == nil {
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packetBytes))
	}
}

// Close implements the io.Closer interface. It gracefully stops the
// publisher goroutine.
func (p *UDPPublisher) Close() error {
	applog.Debugf("UDPPublisher: Close called, stopping publisher...")
	return p.Stop()
}

var _ interface{ Close() error } = (*UDPPublisher)(nil)
