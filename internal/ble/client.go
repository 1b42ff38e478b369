package ble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/toiolab/toio/internal/protocol"
	"tinygo.org/x/bluetooth"
)

// Errors
var (
	ErrNotConnected     = errors.New("ble: not connected to cube")
	ErrAlreadyConnected = errors.New("ble: already connected to a cube")
	ErrCubeNotFound     = errors.New("ble: cube not found")
	ErrServiceNotFound  = errors.New("ble: toio service not found")
)

var serviceUUID = bluetooth.NewUUID(mustParseUUID(protocol.ServiceUUID))

// Characteristics the cube pushes notifications on.
var notifyChars = []protocol.Characteristic{
	protocol.CharID,
	protocol.CharMotor,
	protocol.CharMotion,
	protocol.CharButton,
	protocol.CharBattery,
	protocol.CharConfig,
}

// Characteristics we only write to.
var writeChars = []protocol.Characteristic{
	protocol.CharLight,
	protocol.CharSound,
}

func mustParseUUID(s string) [16]byte {
	var uuid [16]byte
	clean := ""
	for _, c := range s {
		if c != '-' {
			clean += string(c)
		}
	}
	for i := 0; i < 16; i++ {
		var b byte
		fmt.Sscanf(clean[i*2:i*2+2], "%02x", &b)
		uuid[i] = b
	}
	return uuid
}

// Adapter wraps the platform BLE adapter. One Adapter serves any number of
// scans and connections; it is injected into the searcher and each transport
// rather than accessed as global state.
type Adapter struct {
	adapter *bluetooth.Adapter

	mu     sync.Mutex
	active map[string]*Client // connected clients by address
}

// NewAdapter enables the default platform BLE adapter.
func NewAdapter() (*Adapter, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w", err)
	}

	a := &Adapter{
		adapter: adapter,
		active:  make(map[string]*Client),
	}
	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			return
		}
		a.mu.Lock()
		c := a.active[device.Address.String()]
		delete(a.active, device.Address.String())
		a.mu.Unlock()
		if c != nil {
			c.linkLost()
		}
	})
	return a, nil
}

// Scan reports cubes advertising the toio service until the timeout elapses
// or ctx is cancelled. Cubes seen repeatedly are reported repeatedly so the
// caller can keep the freshest signal-strength sample.
func (a *Adapter) Scan(ctx context.Context, timeout time.Duration, found func(Advertisement)) error {
	done := make(chan struct{})
	var scanErr error

	go func() {
		scanErr = a.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !result.HasServiceUUID(serviceUUID) {
				return
			}
			found(Advertisement{
				Address: result.Address.String(),
				Name:    result.LocalName(),
				RSSI:    result.RSSI,
			})
		})
		close(done)
	}()

	select {
	case <-time.After(timeout):
	case <-ctx.Done():
	}

	a.adapter.StopScan()
	<-done

	if scanErr != nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}
	return ctx.Err()
}

// Transport returns an unconnected transport for a previously scanned cube.
func (a *Adapter) Transport(adv Advertisement) Transport {
	return &Client{parent: a, target: adv}
}

// Client is the tinygo-bluetooth implementation of Transport.
type Client struct {
	parent *Adapter
	target Advertisement

	mu        sync.Mutex
	connected bool
	device    bluetooth.Device
	chars     map[protocol.Characteristic]bluetooth.DeviceCharacteristic
	notif     chan Notification
	closeOnce sync.Once
}

// Connect finds the cube by address, connects, discovers the toio service
// and enables notifications on every notifying characteristic.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	addr, err := c.findAddress(ctx)
	if err != nil {
		return err
	}

	device, err := c.parent.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover services: %w", err)
	}
	if len(services) == 0 {
		device.Disconnect()
		return ErrServiceNotFound
	}

	all := make([]protocol.Characteristic, 0, len(notifyChars)+len(writeChars))
	all = append(all, notifyChars...)
	all = append(all, writeChars...)

	want := make([]bluetooth.UUID, 0, len(all))
	uuidToChar := make(map[bluetooth.UUID]protocol.Characteristic, len(all))
	for _, pc := range all {
		u := bluetooth.NewUUID(mustParseUUID(pc.UUID()))
		want = append(want, u)
		uuidToChar[u] = pc
	}

	discovered, err := services[0].DiscoverCharacteristics(want)
	if err != nil {
		device.Disconnect()
		return fmt.Errorf("failed to discover characteristics: %w", err)
	}

	chars := make(map[protocol.Characteristic]bluetooth.DeviceCharacteristic)
	for _, ch := range discovered {
		if pc, ok := uuidToChar[ch.UUID()]; ok {
			chars[pc] = ch
		}
	}

	c.mu.Lock()
	c.device = device
	c.chars = chars
	c.notif = make(chan Notification, 64)
	c.connected = true
	c.closeOnce = sync.Once{}
	c.mu.Unlock()

	for _, pc := range notifyChars {
		ch, ok := chars[pc]
		if !ok {
			continue
		}
		pc := pc
		err := ch.EnableNotifications(func(data []byte) {
			// The stack reuses its buffer; copy before handing off.
			frame := make([]byte, len(data))
			copy(frame, data)
			c.deliver(Notification{Char: pc, Data: frame})
		})
		if err != nil {
			c.linkLost()
			device.Disconnect()
			return fmt.Errorf("failed to enable notifications on %s: %w", pc, err)
		}
	}

	c.parent.mu.Lock()
	c.parent.active[c.target.Address] = c
	c.parent.mu.Unlock()

	return nil
}

// findAddress scans until the target address is seen again. Connecting by
// address requires a fresh scan result on some platforms.
func (c *Client) findAddress(ctx context.Context) (bluetooth.Address, error) {
	var targetAddr bluetooth.Address
	found := make(chan struct{})
	var foundOnce sync.Once

	go func() {
		c.parent.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if result.Address.String() == c.target.Address {
				targetAddr = result.Address
				foundOnce.Do(func() { close(found) })
			}
		})
	}()

	select {
	case <-found:
		c.parent.adapter.StopScan()
		return targetAddr, nil
	case <-time.After(10 * time.Second):
		c.parent.adapter.StopScan()
		return targetAddr, ErrCubeNotFound
	case <-ctx.Done():
		c.parent.adapter.StopScan()
		return targetAddr, ctx.Err()
	}
}

func (c *Client) deliver(n Notification) {
	c.mu.Lock()
	notif := c.notif
	connected := c.connected
	c.mu.Unlock()
	if !connected || notif == nil {
		return
	}
	// The session drains this channel promptly; if it ever backs up,
	// dropping beats stalling the BLE stack's callback thread.
	select {
	case notif <- n:
	default:
	}
}

// Disconnect closes the connection and the notification channel.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	device := c.device
	c.mu.Unlock()

	err := device.Disconnect()
	c.linkLost()

	c.parent.mu.Lock()
	delete(c.parent.active, c.target.Address)
	c.parent.mu.Unlock()

	return err
}

// linkLost marks the connection gone and closes the notification stream.
// Called on explicit Disconnect and when the platform reports a drop.
func (c *Client) linkLost() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return
	}
	c.connected = false
	notif := c.notif
	c.closeOnce.Do(func() {
		if notif != nil {
			close(notif)
		}
	})
}

// Write sends a frame to a characteristic. WriteWithoutResponse is the one
// write call every tinygo bluetooth backend provides, and the cube accepts
// unacknowledged writes on all of its command characteristics.
func (c *Client) Write(char protocol.Characteristic, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}
	ch, ok := c.chars[char]
	if !ok {
		return fmt.Errorf("ble: characteristic %s not discovered", char)
	}

	_, err := ch.WriteWithoutResponse(data)
	return err
}

// Notifications returns the inbound frame stream.
func (c *Client) Notifications() <-chan Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notif
}
