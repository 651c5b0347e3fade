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
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/usecase"
)

// studyCmd runs one interactive review session in the terminal.
var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "开始一次复习会话",
	Long: `组卷并进入交互问答: 每张卡片显示正面, 输入背面释义后回车提交。
直接回车视为不会 (计入错题本), Ctrl-D 放弃剩余卡片并结束会话。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		newLimit, _ := cmd.Flags().GetInt32("new")
		reviewLimit, _ := cmd.Flags().GetInt32("review")

		c, cleanup, err := newContainer()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		user, err := resolveUser(ctx, c, flagUser)
		if err != nil {
			return err
		}

		session, err := c.Review.StartSession(ctx, user.ID, usecase.StartSessionParams{
			NewCardsLimit:    newLimit,
			ReviewCardsLimit: reviewLimit,
		})
		if err != nil {
			return fmt.Errorf("组卷失败: %w", err)
		}
		if len(session.Cards) == 0 {
			if _, err := c.Review.CompleteSession(ctx, user.ID, session.ID); err != nil {
				return err
			}
			cmd.Println("当前没有到期或可学的卡片, 稍后再来。")
			return nil
		}

		cmd.Printf("本次会话共 %d 张卡片 (新卡 %d / 复习 %d)\n", len(session.Cards), session.NewCount, session.ReviewCount)

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for int(session.CurrentIndex) < len(session.Cards) {
			slot := session.Cards[session.CurrentIndex]
			card, err := c.Cards.GetByID(ctx, slot.CardID)
			if err != nil {
				return err
			}
			if card == nil {
				return fmt.Errorf("卡片 %d 不存在", slot.CardID)
			}

			tag := "复习"
			if slot.New {
				tag = "新卡"
			}
			cmd.Printf("\n[%d/%d] %s  %s\n> ", session.CurrentIndex+1, len(session.Cards), tag, card.Front)
			if !scanner.Scan() {
				if _, err := c.Review.AbandonSession(ctx, user.ID, session.ID); err != nil {
					return err
				}
				cmd.Println("\n会话已放弃。")
				return scanner.Err()
			}

			answer := scanner.Text()
			correct := answerMatches(answer, card.Back)
			result, err := c.Review.SubmitAnswer(ctx, user.ID, usecase.SubmitAnswerParams{
				SessionID:  session.ID,
				CardID:     card.ID,
				Correct:    correct,
				UserAnswer: strings.TrimSpace(answer),
				QuizType:   entity.QuizTypeSpell,
			})
			if err != nil {
				return err
			}
			session = result.Session

			if correct {
				due := result.Progress.Memory.Due.In(user.Location())
				cmd.Printf("✓ 正确, 下次复习 %s (%d 天后)\n", due.Format("2006-01-02"), result.Progress.Memory.IntervalDays)
			} else {
				cmd.Printf("✗ 正确答案: %s (已记入错题本)\n", card.Back)
			}
		}

		completed, err := c.Review.CompleteSession(ctx, user.ID, session.ID)
		if err != nil {
			return err
		}
		cmd.Printf("\n会话完成: 答对 %d / 答错 %d\n", completed.CorrectCount, completed.WrongCount)

		today, err := c.Review.TodayProgress(ctx, user.ID)
		if err != nil {
			return err
		}
		mark := ""
		if today.GoalReached {
			mark = ", 已达成今日目标 ✓"
		}
		cmd.Printf("今日进度: %d/%d 张%s\n", today.Reviewed, today.Goal, mark)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(studyCmd)
	studyCmd.Flags().Int32("new", 0, "本次会话新卡上限 (0 表示使用配置默认值)")
	studyCmd.Flags().Int32("review", 0, "本次会话复习上限 (0 表示使用配置默认值)")
}

// answerMatches grades a typed answer against the card back. The back may
// list alternatives separated by ';' or '；', any of which counts.
func answerMatches(answer, back string) bool {
	got := strings.TrimSpace(answer)
	if got == "" {
		return false
	}
	for _, alt := range strings.FieldsFunc(back, func(r rune) bool { return r == ';' || r == '；' }) {
		if strings.EqualFold(got, strings.TrimSpace(alt)) {
			return true
		}
	}
	return false
}
