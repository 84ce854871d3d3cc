//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/palemoky/gan-deng-yan/internal/logger"
)

// DefaultDir 音效文件目录
const DefaultDir = "assets/sounds"

const sampleRate = beep.SampleRate(44100)

// SoundManager 预加载音效并通过扬声器播放
type SoundManager struct {
	mu      sync.Mutex
	buffers map[string]*beep.Buffer
	enabled bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{buffers: make(map[string]*beep.Buffer)}
}

// Init 初始化扬声器并加载 dir 下的 mp3/wav 文件，文件名（不含扩展名）即音效名
func (sm *SoundManager) Init(dir string) error {
	// 较小的缓冲区降低延迟
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enabled = true
	return sm.loadSoundFiles(dir)
}

func (sm *SoundManager) loadSoundFiles(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		if err := sm.loadSoundFile(filepath.Join(dir, name), ext); err != nil {
			logger.LogWarn("加载音效 %s 失败: %v", name, err)
		}
	}
	return nil
}

func (sm *SoundManager) loadSoundFile(path, ext string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buffer.Append(resampled)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sm.buffers[base] = buffer
	return nil
}

// Play 播放音效，未加载或未启用时静默
func (sm *SoundManager) Play(name string) {
	if name == "" {
		return
	}
	sm.mu.Lock()
	buffer, ok := sm.buffers[name]
	enabled := sm.enabled
	sm.mu.Unlock()

	if !enabled || !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.enabled {
		speaker.Clear()
	}
	sm.enabled = false
}
