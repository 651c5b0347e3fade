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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

// wrongCmd lists and manages the wrong-answer book.
var wrongCmd = &cobra.Command{
	Use:   "wrong",
	Short: "查看与管理错题本",
	Long: `列出错题记录, 支持 CEL 风格过滤表达式与排序。

可用过滤字段: card_id, quiz_type, reviewed, create_time; 排序字段:
create_time, reviewed, id。例如:

  revise wrong --filter 'reviewed == false && quiz_type == "spell"'
  revise wrong --filter 'create_time >= timestamp("2025-06-01T00:00:00Z")' --order-by 'create_time asc'
  revise wrong --mark 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		page, _ := cmd.Flags().GetInt32("page")
		size, _ := cmd.Flags().GetInt32("size")
		markID, _ := cmd.Flags().GetInt64("mark")

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

		if markID > 0 {
			record, err := c.Review.MarkWrongAnswerReviewed(ctx, user.ID, markID)
			if err != nil {
				if errors.Is(err, entity.ErrUnknownWrongAnswer) {
					return fmt.Errorf("错题 #%d 不存在", markID)
				}
				return err
			}
			cmd.Printf("错题 #%d 已标记为复习过 (%s)\n", record.ID, record.ReviewedAt.In(user.Location()).Format("2006-01-02 15:04"))
			return nil
		}

		records, total, err := c.Review.ListWrongAnswers(ctx, &repository.ListWrongAnswerQuery{
			Pagination:  repository.Pagination{PageNo: page, PageSize: size},
			FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
			UserID:      user.ID,
		})
		if err != nil {
			if errors.Is(err, entity.ErrInvalidArgument) {
				return fmt.Errorf("过滤或排序表达式无效: %w", err)
			}
			return err
		}
		if total == 0 {
			cmd.Println("错题本是空的。")
			return nil
		}

		loc := user.Location()
		cmd.Printf("错题 %d 条 (第 %d 页):\n", total, page)
		for _, r := range records {
			front := fmt.Sprintf("卡片 %d", r.CardID)
			if card, err := c.Cards.GetByID(ctx, r.CardID); err == nil && card != nil {
				front = card.Front
			}
			state := " "
			if r.Reviewed {
				state = "✓"
			}
			cmd.Printf("  #%-4d %s %s  [%s]  答 %q, 应为 %q\n",
				r.ID, r.CreatedAt.In(loc).Format("01-02 15:04"), state, r.QuizType, r.UserAnswer, r.CorrectAnswer)
			cmd.Printf("        %s\n", front)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wrongCmd)
	wrongCmd.Flags().String("filter", "", "CEL 过滤表达式, 例如 'reviewed == false'")
	wrongCmd.Flags().String("order-by", "", "排序, 例如 'create_time desc'")
	wrongCmd.Flags().Int32("page", 1, "页码")
	wrongCmd.Flags().Int32("size", 20, "每页条数")
	wrongCmd.Flags().Int64("mark", 0, "将指定错题标记为复习过")
}
