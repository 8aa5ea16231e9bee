package server

import "math/rand/v2"

// 昵称词库
var (
	adjectives = []string{
		"幸运的", "狂野的", "冷静的", "神秘的", "大胆的",
		"狡猾的", "机智的", "沉稳的", "闪亮的", "淡定的",
	}

	nouns = []string{
		"红桃A", "黑桃K", "方块Q", "梅花J", "小八",
		"王牌", "庄家", "赌神", "牌手", "洗牌侠",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	return adj + noun
}
