package giprobe

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// SHGPUData is the GPU layout of one probe: 9 SH terms as (r, g, b, 0)
// float quadruples, 36 floats total. The zero in the fourth lane is
// alignment padding that consuming shaders rely on; the layout must not
// change.
type SHGPUData [SHCoefficientCount * 4]float32

// GPUProbeData is the flat, CPU-side blob handed to the rendering
// subsystem: the grid descriptor plus one SHGPUData per grid probe.
// Group probes are not exported.
type GPUProbeData struct {
	SHData   []SHGPUData
	GridMin  mgl32.Vec3
	GridMax  mgl32.Vec3
	GridSize mgl32.Vec3
	ResX     int
	ResY     int
	ResZ     int
}

func packSH(sh SHCoefficients) SHGPUData {
	var out SHGPUData
	for i := 0; i < SHCoefficientCount; i++ {
		c := sh.Coefficients[i]
		out[i*4+0] = c.X()
		out[i*4+1] = c.Y()
		out[i*4+2] = c.Z()
		out[i*4+3] = 0.0
	}
	return out
}

// ExportGPUData flattens the grid for upload. An uninitialized grid yields
// empty SHData and a zero descriptor.
func (s *GISystem) ExportGPUData() GPUProbeData {
	if s.grid == nil || !s.grid.IsInitialized() {
		return GPUProbeData{}
	}

	grid := s.grid
	minB, maxB := grid.Bounds()
	resX, resY, resZ := grid.Resolution()

	data := GPUProbeData{
		SHData:   make([]SHGPUData, 0, grid.ProbeCount()),
		GridMin:  minB,
		GridMax:  maxB,
		GridSize: grid.CellSize(),
		ResX:     resX,
		ResY:     resY,
		ResZ:     resZ,
	}
	for _, probe := range grid.Probes() {
		data.SHData = append(data.SHData, packSH(probe.SH()))
	}
	return data
}

// gpuBlobMagic marks serialized probe blobs ("GIPB").
const gpuBlobMagic uint32 = 0x47495042

// WriteTo serializes the blob little-endian for file handoff:
// magic, resolution, bounds, cell size, then the probe SH payload.
func (d GPUProbeData) WriteTo(w io.Writer) (int64, error) {
	var written int64

	put := func(v any) error {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
		written += int64(binary.Size(v))
		return nil
	}

	header := []any{
		gpuBlobMagic,
		uint32(d.ResX), uint32(d.ResY), uint32(d.ResZ),
		uint32(len(d.SHData)),
		[3]float32(d.GridMin),
		[3]float32(d.GridMax),
		[3]float32(d.GridSize),
	}
	for _, v := range header {
		if err := put(v); err != nil {
			return written, err
		}
	}
	for _, sh := range d.SHData {
		if err := put(sh); err != nil {
			return written, err
		}
	}
	return written, nil
}

// ReadGPUProbeData is the inverse of WriteTo.
func ReadGPUProbeData(r io.Reader) (GPUProbeData, error) {
	var d GPUProbeData

	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return d, err
	}
	if magic != gpuBlobMagic {
		return d, fmt.Errorf("not a probe blob: magic %08x", magic)
	}

	var resX, resY, resZ, count uint32
	var minB, maxB, size [3]float32
	for _, v := range []any{&resX, &resY, &resZ, &count, &minB, &maxB, &size} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return d, err
		}
	}

	// The header is untrusted input: the probe count must agree with the
	// grid resolution before it sizes an allocation.
	if uint64(count) != uint64(resX)*uint64(resY)*uint64(resZ) {
		return d, fmt.Errorf("probe blob count %d does not match grid %dx%dx%d",
			count, resX, resY, resZ)
	}

	d.ResX, d.ResY, d.ResZ = int(resX), int(resY), int(resZ)
	d.GridMin, d.GridMax, d.GridSize = mgl32.Vec3(minB), mgl32.Vec3(maxB), mgl32.Vec3(size)
	d.SHData = make([]SHGPUData, count)
	for i := range d.SHData {
		if err := binary.Read(r, binary.LittleEndian, &d.SHData[i]); err != nil {
			return d, err
		}
	}
	return d, nil
}
