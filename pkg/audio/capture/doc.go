// Package capture provides concrete [audio.Backend] implementations.
//
// audio.Backend itself only describes how to acquire a raw stream from a
// symbolic [audio.Source]; this package supplies the platform adapters that
// make that contract real:
//
//   - PulseBackend and PipewireBackend shell out to the system's audio
//     server CLI tools (parecord / pw-record) to capture SourceMicrophone
//     and SourceSystem.
//   - OpusBackend decodes an Opus packet stream (SourceCombined) using
//     layeh.com/gopus, the same codec library the teacher used for Discord
//     voice, without any dependency on a bot framework.
package capture
