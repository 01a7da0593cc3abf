package capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"layeh.com/gopus"

	"github.com/nullshift/vocalops/pkg/audio"
)

// Discord-style Opus audio: 48kHz stereo, 20ms frames. Kept identical to the
// teacher's pkg/audio/discord/opus.go constants since this backend decodes
// the same wire format, just without the Discord gateway/voice session
// around it.
const (
	opusSampleRate  = 48000
	opusChannels    = 2
	opusFrameSizeMs = 20
	opusFrameSize   = opusSampleRate * opusFrameSizeMs / 1000 // 960
)

// OpusBackend implements [audio.Backend] for [audio.SourceCombined]: a
// symbolic source representing a pre-mixed (microphone + system) stream
// delivered as length-prefixed Opus packets over a Unix domain socket,
// typically produced by an external mixer/companion process. Decoding uses
// layeh.com/gopus directly — the same codec dependency the teacher wired for
// Discord voice — with no bot-framework session management around it.
type OpusBackend struct {
	// SocketPath is the Unix domain socket OpusBackend dials to receive the
	// framed Opus stream: each packet is a 2-byte big-endian length prefix
	// followed by that many bytes of Opus payload.
	SocketPath string

	dial func(ctx context.Context) (net.Conn, error)
}

// NewOpusBackend returns an OpusBackend that dials the real Unix socket at
// socketPath.
func NewOpusBackend(socketPath string) *OpusBackend {
	return &OpusBackend{
		SocketPath: socketPath,
		dial: func(ctx context.Context) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
}

// Open implements audio.Backend. Only audio.SourceCombined is accepted.
func (b *OpusBackend) Open(ctx context.Context, source audio.Source) (audio.RawStream, error) {
	if source != audio.SourceCombined {
		return nil, fmt.Errorf("opus: unsupported source %s (this backend only serves SourceCombined)", source)
	}

	conn, err := b.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("opus: dial %s: %w", b.SocketPath, err)
	}

	dec, err := gopus.NewDecoder(opusSampleRate, opusChannels)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opus: create decoder: %w", err)
	}

	return newOpusStream(conn, dec), nil
}

// opusStream reads length-prefixed Opus packets off conn and decodes them
// into interleaved-stereo audio.RawFrame values at opusSampleRate.
type opusStream struct {
	conn io.ReadCloser
	dec  *gopus.Decoder

	frames chan audio.RawFrame
	stopCh chan struct{}

	closeOnce sync.Once
	err       error
	errMu     sync.Mutex

	epoch time.Time
}

func newOpusStream(conn io.ReadCloser, dec *gopus.Decoder) *opusStream {
	s := &opusStream{
		conn:   conn,
		dec:    dec,
		frames: make(chan audio.RawFrame, 8),
		stopCh: make(chan struct{}),
		epoch:  time.Now(),
	}
	go s.run()
	return s
}

func (s *opusStream) run() {
	defer close(s.frames)

	lenBuf := make([]byte, 2)
	for {
		if _, err := io.ReadFull(s.conn, lenBuf); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				s.setErr(fmt.Errorf("opus: read length prefix: %w", err))
			}
			return
		}
		packetLen := binary.BigEndian.Uint16(lenBuf)
		if packetLen == 0 {
			continue
		}

		packet := make([]byte, packetLen)
		if _, err := io.ReadFull(s.conn, packet); err != nil {
			s.setErr(fmt.Errorf("opus: read packet: %w", err))
			return
		}

		pcm, err := s.dec.Decode(packet, opusFrameSize, false)
		if err != nil {
			s.setErr(fmt.Errorf("opus: decode: %w", err))
			return
		}

		samples := make([]float32, len(pcm))
		for i, v := range pcm {
			samples[i] = float32(v) / 32768.0
		}

		frame := audio.RawFrame{
			Data:       samples,
			SampleRate: opusSampleRate,
			Channels:   opusChannels,
			CaptureMs:  time.Since(s.epoch).Milliseconds(),
		}
		select {
		case s.frames <- frame:
		case <-s.stopCh:
			return
		}
	}
}

func (s *opusStream) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

func (s *opusStream) Frames() <-chan audio.RawFrame { return s.frames }

func (s *opusStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *opusStream) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		close(s.stopCh)
		closeErr = s.conn.Close()
	})
	return closeErr
}
