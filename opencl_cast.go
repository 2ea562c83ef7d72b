//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"crawler/internal/raycast"
)

// openCLCaster marches every ray of a fan in one kernel launch. Distances are
// computed in float32, so they can differ from the CPU casters by a step at
// grazing angles.
type openCLCaster struct {
	mu sync.Mutex

	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	cellsBuf   *cl.MemObject
	anglesBuf  *cl.MemObject
	outBuf     *cl.MemObject
	deviceName string

	mapRef    raycast.Occupancy
	width     int
	height    int
	cells     []uint8
	cellsCap  int
	rayCap    int
	angles32  []float32
	results32 []float32
}

const castKernelSource = `__kernel void cast_fan(
    const int width,
    const int height,
    const float origin_x,
    const float origin_y,
    const float step,
    const int count,
    __global const uchar* cells,
    __global const float* angles,
    __global float* out)
{
    int i = get_global_id(0);
    if (i >= count) {
        return;
    }
    float limit = sqrt((float)(width * width + height * height));
    float dx = cos(angles[i]);
    float dy = sin(angles[i]);
    float x = origin_x;
    float y = origin_y;
    float hit = limit;
    for (float d = 0.0f; d < limit; d += step) {
        x = origin_x + dx * d;
        y = origin_y + dy * d;
        int cx = (int)floor(x);
        int cy = (int)floor(y);
        if (cx < 0 || cx >= width || cy < 0 || cy >= height) {
            break;
        }
        if (cells[cy * width + cx] != 0) {
            hit = d;
            break;
        }
    }
    out[i * 3] = hit;
    out[i * 3 + 1] = x;
    out[i * 3 + 2] = y;
}`

// newOpenCLCaster builds the cast kernel on the first GPU, or failing that the
// first CPU device, of any platform.
func newOpenCLCaster() (*openCLCaster, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	device := firstDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = firstDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	c := &openCLCaster{context: context, deviceName: device.Name()}
	if c.queue, err = context.CreateCommandQueue(device, 0); err != nil {
		c.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if c.program, err = context.CreateProgramWithSource([]string{castKernelSource}); err != nil {
		c.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := c.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		c.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if c.kernel, err = c.program.CreateKernel("cast_fan"); err != nil {
		c.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return c, nil
}

func firstDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// CastFan implements raycast.FanCaster.
func (c *openCLCaster) CastFan(m raycast.Occupancy, originX, originY float64, angles []float64, hits []raycast.Hit) error {
	if len(hits) < len(angles) {
		return fmt.Errorf("opencl: %d hit slots for %d rays", len(hits), len(angles))
	}
	n := len(angles)
	if n == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.syncMap(m); err != nil {
		return err
	}
	if err := c.ensureRays(n); err != nil {
		return err
	}
	for i, a := range angles {
		c.angles32[i] = float32(a)
	}
	if _, err := c.queue.EnqueueWriteBufferFloat32(c.anglesBuf, false, 0, c.angles32[:n], nil); err != nil {
		return fmt.Errorf("writing angle buffer: %w", err)
	}
	if err := c.kernel.SetArgs(
		int32(c.width),
		int32(c.height),
		float32(originX),
		float32(originY),
		float32(raycast.Step),
		int32(n),
		c.cellsBuf,
		c.anglesBuf,
		c.outBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if _, err := c.queue.EnqueueNDRangeKernel(c.kernel, nil, []int{n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	out := c.results32[:3*n]
	if _, err := c.queue.EnqueueReadBufferFloat32(c.outBuf, true, 0, out, nil); err != nil {
		return fmt.Errorf("reading hit buffer: %w", err)
	}
	for i := 0; i < n; i++ {
		hits[i] = raycast.Hit{
			Distance: float64(out[3*i]),
			X:        float64(out[3*i+1]),
			Y:        float64(out[3*i+2]),
		}
	}
	return nil
}

// syncMap uploads the occupancy grid when the caster sees a new map. Maps do
// not change after construction, so identity is enough.
func (c *openCLCaster) syncMap(m raycast.Occupancy) error {
	if c.mapRef == m && c.cellsBuf != nil {
		return nil
	}
	w, h := m.Size()
	size := w * h
	if cap(c.cells) < size {
		c.cells = make([]uint8, size)
	}
	c.cells = c.cells[:size]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			if m.IsWall(x, y) {
				v = 1
			}
			c.cells[y*w+x] = v
		}
	}
	if size > c.cellsCap {
		if c.cellsBuf != nil {
			c.cellsBuf.Release()
			c.cellsBuf = nil
		}
		buf, err := c.context.CreateEmptyBuffer(cl.MemReadOnly, size)
		if err != nil {
			return fmt.Errorf("allocating cell buffer: %w", err)
		}
		c.cellsBuf, c.cellsCap = buf, size
	}
	if _, err := c.queue.EnqueueWriteBuffer(c.cellsBuf, true, 0, size, unsafe.Pointer(&c.cells[0]), nil); err != nil {
		return fmt.Errorf("writing cell buffer: %w", err)
	}
	c.mapRef, c.width, c.height = m, w, h
	return nil
}

func (c *openCLCaster) ensureRays(n int) error {
	if n <= c.rayCap {
		return nil
	}
	c.releaseRayBuffers()
	floatSize := int(unsafe.Sizeof(float32(0)))
	anglesBuf, err := c.context.CreateEmptyBuffer(cl.MemReadOnly, n*floatSize)
	if err != nil {
		return fmt.Errorf("allocating angle buffer: %w", err)
	}
	outBuf, err := c.context.CreateEmptyBuffer(cl.MemWriteOnly, 3*n*floatSize)
	if err != nil {
		anglesBuf.Release()
		return fmt.Errorf("allocating hit buffer: %w", err)
	}
	c.anglesBuf, c.outBuf = anglesBuf, outBuf
	c.angles32 = make([]float32, n)
	c.results32 = make([]float32, 3*n)
	c.rayCap = n
	return nil
}

func (c *openCLCaster) releaseRayBuffers() {
	if c.anglesBuf != nil {
		c.anglesBuf.Release()
		c.anglesBuf = nil
	}
	if c.outBuf != nil {
		c.outBuf.Release()
		c.outBuf = nil
	}
	c.rayCap = 0
}

// Close releases every device object.
func (c *openCLCaster) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseRayBuffers()
	if c.cellsBuf != nil {
		c.cellsBuf.Release()
		c.cellsBuf = nil
	}
	c.cellsCap = 0
	c.mapRef = nil
	if c.kernel != nil {
		c.kernel.Release()
		c.kernel = nil
	}
	if c.program != nil {
		c.program.Release()
		c.program = nil
	}
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.context != nil {
		c.context.Release()
		c.context = nil
	}
}

func (c *openCLCaster) DeviceName() string {
	return c.deviceName
}
