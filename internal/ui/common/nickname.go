package common

import "math/rand/v2"

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"淡定的", "机智的", "潇洒的", "霸气的", "呆萌的",
	}

	nouns = []string{
		"熊猫", "老虎", "狐狸", "企鹅", "考拉",
		"柯基", "柴犬", "龙猫", "松鼠", "羊驼",
	}
)

// GenerateNickname 没有指定名字时生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
