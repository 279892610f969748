//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quadcomp/internal/core"
	"github.com/gogpu/quadcomp/internal/shader"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the render target format. Readback bytes are R, G, B, A.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// copyPitchAlignment is the WebGPU bytesPerRow alignment for buffer copies.
const copyPitchAlignment = 256

// submitTimeout bounds the wait for a submitted pass.
const submitTimeout = 5 * time.Second

const pollInterval = 100 * time.Microsecond

var _ core.Renderer = (*Renderer)(nil)

// Renderer implements core.Renderer on a HAL device.
type Renderer struct {
	dev     *Device
	device  hal.Device
	queue   hal.Queue
	variant core.Variant

	pipe  *compositePipeline
	slots []*slot

	target     hal.Texture
	targetView hal.TextureView
	tw, th     uint32
}

// New builds the pipeline for prog and creates one slot per unit of the
// variant. The renderer takes ownership of dev and closes it on failure.
func New(dev *Device, prog *shader.Program, variant core.Variant) (*Renderer, error) {
	if dev == nil || dev.Device == nil || dev.Queue == nil {
		return nil, fmt.Errorf("gpu: nil device")
	}
	r := &Renderer{dev: dev, device: dev.Device, queue: dev.Queue, variant: variant}

	pipe, err := newCompositePipeline(r.device, prog)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("gpu: %w", err)
	}
	r.pipe = pipe

	r.slots = make([]*slot, variant.Units())
	for unit := range r.slots {
		s, err := newSlot(r.device, r.queue, unit, variant.UnitFormat(unit), variant.UnitFilter(unit))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("gpu: %w", err)
		}
		r.slots[unit] = s
	}
	slogger().Debug("gpu: renderer ready", "variant", variant.String(), "units", len(r.slots))
	return r, nil
}

// Upload replaces the contents of a unit, reallocating its texture only
// when the size changes.
func (r *Renderer) Upload(unit int, p core.Plane) error {
	if unit < 0 || unit >= len(r.slots) {
		return fmt.Errorf("gpu: unit %d out of range [0, %d)", unit, len(r.slots))
	}
	if err := p.Validate(unit); err != nil {
		return err
	}
	s := r.slots[unit]
	if p.Format != s.format {
		return fmt.Errorf("gpu: unit %d expects %v, got %v", unit, s.format, p.Format)
	}
	if err := s.ensure(r.device, uint32(p.Width), uint32(p.Height)); err != nil { //nolint:gosec // validated positive
		return core.NewDrawError(core.DrawCodeResource, "upload", err)
	}
	if err := s.write(r.queue, p); err != nil {
		return core.NewDrawError(core.DrawCodeResource, "upload", err)
	}
	slogger().Debug("gpu: upload", "unit", unit, "format", p.Format.String(), "w", p.Width, "h", p.Height)
	return nil
}

// Draw renders one pass and reads it back. Rows are returned bottom-to-top.
func (r *Renderer) Draw(p *core.DrawParams) ([]byte, error) {
	if r.pipe == nil {
		return nil, core.NewDrawError(core.DrawCodeResource, "draw", fmt.Errorf("renderer closed"))
	}
	if p.Variant != r.variant {
		return nil, fmt.Errorf("gpu: draw variant %v on %v renderer", p.Variant, r.variant)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("gpu: invalid target size %dx%d", p.Width, p.Height)
	}
	w, h := uint32(p.Width), uint32(p.Height) //nolint:gosec // validated positive

	if err := r.ensureTarget(w, h); err != nil {
		return nil, core.NewDrawError(core.DrawCodeResource, "target", err)
	}

	res, err := r.buildFrameResources(p)
	if err != nil {
		return nil, err
	}
	defer res.destroy(r.device)

	return r.encodeSubmitReadback(p, res, w, h)
}

// frameResources holds per-pass buffers and bind groups.
type frameResources struct {
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroups []hal.BindGroup
	vertCount  uint32
}

func (fr *frameResources) destroy(device hal.Device) {
	for _, bg := range fr.bindGroups {
		if bg != nil {
			device.DestroyBindGroup(bg)
		}
	}
	if fr.uniformBuf != nil {
		device.DestroyBuffer(fr.uniformBuf)
	}
	if fr.vertBuf != nil {
		device.DestroyBuffer(fr.vertBuf)
	}
}

// makeParams packs the uniform block: textureSize at offset 0 and the
// quadrant mapping at offset 16.
func makeParams(p *core.DrawParams) []byte {
	buf := make([]byte, core.ParamsSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(p.TextureSize[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(p.TextureSize[1]))
	for i, q := range p.Quadrants {
		binary.LittleEndian.PutUint32(buf[16+4*i:], q)
	}
	return buf
}

func (r *Renderer) buildFrameResources(p *core.DrawParams) (*frameResources, error) {
	fr := &frameResources{vertCount: p.VertexCount}

	var err error
	fr.vertBuf, err = r.createAndUploadBuffer("quadcomp_verts", p.Vertices,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, core.NewDrawError(core.DrawCodeResource, "vertex buffer", err)
	}
	fr.uniformBuf, err = r.createAndUploadBuffer("quadcomp_params", makeParams(p),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		fr.destroy(r.device)
		return nil, core.NewDrawError(core.DrawCodeResource, "uniform buffer", err)
	}

	textures := make(map[string]*slot, len(p.Bindings))
	samplers := make(map[string]*slot, len(p.Bindings))
	for _, b := range p.Bindings {
		if b.Unit < 0 || b.Unit >= len(r.slots) {
			fr.destroy(r.device)
			return nil, fmt.Errorf("gpu: binding %q references unit %d", b.Name, b.Unit)
		}
		textures[b.Name] = r.slots[b.Unit]
		samplers[b.Name+"Sampler"] = r.slots[b.Unit]
	}

	fr.bindGroups = make([]hal.BindGroup, len(r.pipe.layouts))
	for g, layout := range r.pipe.layouts {
		var entries []gputypes.BindGroupEntry
		for _, res := range r.pipe.resources {
			if res.Group != g {
				continue
			}
			entry := gputypes.BindGroupEntry{Binding: uint32(res.Binding)} //nolint:gosec // bindings are small
			switch res.Kind {
			case shader.KindUniform:
				entry.Resource = gputypes.BufferBinding{
					Buffer: fr.uniformBuf.NativeHandle(), Offset: 0, Size: core.ParamsSize,
				}
			case shader.KindTexture:
				s, ok := textures[res.Name]
				if !ok {
					fr.destroy(r.device)
					return nil, fmt.Errorf("gpu: no unit bound to texture %q", res.Name)
				}
				entry.Resource = gputypes.TextureViewBinding{
					TextureView: s.view.NativeHandle(),
				}
			case shader.KindSampler:
				s, ok := samplers[res.Name]
				if !ok {
					fr.destroy(r.device)
					return nil, fmt.Errorf("gpu: no unit bound to sampler %q", res.Name)
				}
				entry.Resource = gputypes.SamplerBinding{
					Sampler: s.sampler.NativeHandle(),
				}
			}
			entries = append(entries, entry)
		}
		bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("quadcomp_group%d", g),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			fr.destroy(r.device)
			return nil, core.NewDrawError(core.DrawCodeResource, fmt.Sprintf("bind group %d", g), err)
		}
		fr.bindGroups[g] = bg
	}
	return fr, nil
}

func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		r.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s: %w", label, err)
	}
	return buf, nil
}

// ensureTarget (re)creates the render target when the size changes.
func (r *Renderer) ensureTarget(w, h uint32) error {
	if r.target != nil && r.tw == w && r.th == h {
		return nil
	}
	r.destroyTarget()

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quadcomp_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	r.target = tex

	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "quadcomp_target_view",
	})
	if err != nil {
		r.destroyTarget()
		return fmt.Errorf("create target view: %w", err)
	}
	r.targetView = view
	r.tw, r.th = w, h
	return nil
}

func (r *Renderer) destroyTarget() {
	if r.targetView != nil {
		r.device.DestroyTextureView(r.targetView)
		r.targetView = nil
	}
	if r.target != nil {
		r.device.DestroyTexture(r.target)
		r.target = nil
	}
	r.tw, r.th = 0, 0
}

// encodeSubmitReadback records the pass, copies the target to a staging
// buffer, submits, waits and reads back the pixels.
func (r *Renderer) encodeSubmitReadback(p *core.DrawParams, fr *frameResources, w, h uint32) ([]byte, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "quadcomp_encoder",
	})
	if err != nil {
		return nil, core.NewDrawError(core.DrawCodeEncode, "create command encoder", err)
	}
	if err := encoder.BeginEncoding("quadcomp_frame"); err != nil {
		return nil, core.NewDrawError(core.DrawCodeEncode, "begin encoding", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quadcomp_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    r.targetView,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: p.ClearColor[0], G: p.ClearColor[1], B: p.ClearColor[2], A: p.ClearColor[3],
			},
		}},
	})
	rp.SetPipeline(r.pipe.pipeline)
	for g, bg := range fr.bindGroups {
		rp.SetBindGroup(uint32(g), bg, nil) //nolint:gosec // group count is small
	}
	rp.SetVertexBuffer(0, fr.vertBuf, 0)
	rp.Draw(fr.vertCount, 1, 0, 0)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quadcomp_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, core.NewDrawError(core.DrawCodeResource, "staging buffer", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(r.target, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, core.NewDrawError(core.DrawCodeEncode, "end encoding", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	idx, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return nil, core.NewDrawError(core.DrawCodeSubmit, "submit", err)
	}
	if err := r.waitSubmission(idx); err != nil {
		return nil, err
	}

	readback, err := r.readStaging(staging, stagingSize)
	if err != nil {
		return nil, core.NewDrawError(core.DrawCodeReadback, "read staging buffer", err)
	}
	slogger().Debug("gpu: pass complete", "vertices", fr.vertCount, "w", w, "h", h)
	return bottomUp(readback, int(w), int(h), int(alignedBytesPerRow)), nil
}

// waitSubmission polls the queue until idx completes or submitTimeout passes.
func (r *Renderer) waitSubmission(idx uint64) error {
	deadline := time.Now().Add(submitTimeout)
	for r.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return core.NewDrawError(core.DrawCodeTimeout, "wait for GPU",
				fmt.Errorf("submission %d not complete after %v", idx, submitTimeout))
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// readStaging maps the staging buffer and copies size bytes out of it.
func (r *Renderer) readStaging(staging hal.Buffer, size uint64) ([]byte, error) {
	mapping, err := r.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, err
	}
	if mapping.Ptr == nil {
		_ = r.device.UnmapBuffer(staging)
		return nil, fmt.Errorf("staging buffer mapped to nil")
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := r.device.UnmapBuffer(staging); err != nil {
		return nil, err
	}
	return out, nil
}

// bottomUp strips row padding and reverses row order. The target's first
// row is the top of device space; callers expect the bottom first.
func bottomUp(padded []byte, w, h, pitch int) []byte {
	rowBytes := w * 4
	out := make([]byte, rowBytes*h)
	for row := 0; row < h; row++ {
		src := padded[row*pitch : row*pitch+rowBytes]
		copy(out[(h-1-row)*rowBytes:], src)
	}
	return out
}

// Close releases every GPU resource and the device if owned.
func (r *Renderer) Close() {
	if r.device == nil {
		return
	}
	r.destroyTarget()
	for _, s := range r.slots {
		if s != nil {
			s.destroy(r.device)
		}
	}
	r.slots = nil
	if r.pipe != nil {
		r.pipe.destroy(r.device)
		r.pipe = nil
	}
	if r.dev != nil {
		r.dev.Close()
	}
	r.device, r.queue = nil, nil
}
