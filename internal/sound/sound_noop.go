//go:build ci

package sound

// DefaultDir 音效文件目录
const DefaultDir = "assets/sounds"

type SoundManager struct{}

func NewSoundManager() *SoundManager {
	return &SoundManager{}
}

func (sm *SoundManager) Init(string) error {
	return nil
}

func (sm *SoundManager) Play(string) {
	// No-op
}

func (sm *SoundManager) Close() {
	// No-op
}
