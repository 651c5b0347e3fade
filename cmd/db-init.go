/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/revise/internal/app"
	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/infrastructure/database"
)

// dbInitCmd applies the database schema and optionally seeds demo data.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "初始化数据库结构",
	Long:  "执行数据库迁移建表 (幂等, 可重复执行)。使用 --seed 写入演示用户与示例卡组，便于立即体验复习流程。注意: go-sqlite3 需要 CGO_ENABLED=1 构建。",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetBool("seed")

		c, cleanup, err := newContainer()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := database.Migrate(ctx, c.DB); err != nil {
			return fmt.Errorf("执行数据库迁移失败: %w", err)
		}
		log.Println("数据库迁移完成")

		if !seed {
			return nil
		}
		return seedDemoData(ctx, c, flagUser)
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().Bool("seed", false, "写入演示用户与示例卡组")
}

// seedDemoData creates the demo account and a small bilingual deck set.
// Idempotent: an existing account of the same name skips the whole seed.
func seedDemoData(ctx context.Context, c *app.Container, username string) error {
	existing, err := c.Users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Printf("用户 %q 已存在, 跳过演示数据", username)
		return nil
	}

	now := time.Now()
	user := &entity.User{Username: username, Timezone: "Asia/Shanghai"}
	user.Normalize(now)
	if err := user.Validate(); err != nil {
		return err
	}
	created, err := c.Users.Create(ctx, user)
	if err != nil {
		return fmt.Errorf("创建演示用户失败: %w", err)
	}

	cards := seedCards()
	for i := range cards {
		cards[i].Normalize(now)
		if _, err := c.Cards.Create(ctx, &cards[i]); err != nil {
			return fmt.Errorf("写入示例卡片 %q 失败: %w", cards[i].Front, err)
		}
	}
	log.Printf("已写入演示用户 %q (id=%d) 与 %d 张示例卡片", created.Username, created.ID, len(cards))
	log.Printf("现在可以运行: revise study --user %s", created.Username)
	return nil
}

// seedCards returns the demo decks: deck 1 everyday nouns, deck 2 verbs.
func seedCards() []entity.Card {
	spellCard := func(deck int64, front, back string) entity.Card {
		return entity.Card{
			DeckID:    deck,
			Front:     front,
			Back:      back,
			QuizTypes: []entity.QuizType{entity.QuizTypeChoice, entity.QuizTypeSpell},
		}
	}
	return []entity.Card{
		spellCard(1, "apple", "苹果"),
		spellCard(1, "bridge", "桥"),
		spellCard(1, "library", "图书馆"),
		spellCard(1, "mountain", "山"),
		spellCard(1, "ocean", "海洋"),
		spellCard(1, "breakfast", "早餐"),
		spellCard(1, "umbrella", "雨伞"),
		spellCard(1, "window", "窗户"),
		spellCard(2, "improve", "改进; 提高"),
		spellCard(2, "borrow", "借入"),
		spellCard(2, "describe", "描述"),
		spellCard(2, "compare", "比较"),
		spellCard(2, "forget", "忘记"),
		spellCard(2, "repeat", "重复"),
		spellCard(2, "translate", "翻译"),
		spellCard(2, "remember", "记住"),
	}
}
