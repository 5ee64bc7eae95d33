package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/akselna/utveksle.no-sub001/internal/dto"
	"github.com/akselna/utveksle.no-sub001/internal/model"
	"github.com/akselna/utveksle.no-sub001/pkg/response"
)

// ── search ──

func newSearchCmd(app *cli) *cobra.Command {
	var (
		req      dto.CourseSearchRequest
		verified bool
		page     int
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "检索课程库（管理员视角，包含待审核记录）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verified {
				req.Verified = "true"
			}
			req.Page = strconv.Itoa(page)
			req.Limit = strconv.Itoa(limit)

			result, err := app.svc.Course.Search(cmd.Context(), &req, operator)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgCyan).Fprintf(out, "\n=== 课程库检索 ===\n")
			renderCourses(out, result.Courses)
			renderPagination(out, result.Pagination)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Search, "query", "q", "", "关键字（匹配课程代码与名称）")
	cmd.Flags().StringVar(&req.University, "university", "", "院校")
	cmd.Flags().StringVar(&req.Country, "country", "", "国家")
	cmd.Flags().StringVar(&req.ECTS, "ects", "", "学分")
	cmd.Flags().StringVar(&req.UserID, "user", "", "提交者 ID")
	cmd.Flags().BoolVar(&verified, "verified", false, "仅显示已验证")
	cmd.Flags().IntVar(&page, "page", 1, "页码")
	cmd.Flags().IntVar(&limit, "limit", 0, "每页条数（0 使用配置默认值）")
	return cmd
}

// ── pending ──

func newPendingCmd(app *cli) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "查看待审核队列",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, total, err := app.svc.Course.ListPending(cmd.Context(), page, limit, operator)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgYellow).Fprintf(out, "\n待审核课程对照\n")
			renderCourses(out, courses)
			p := dto.PaginationRequest{Page: page, Limit: limit}
			renderPagination(out, response.NewPagination(total, p.GetPage(),
				p.GetLimit(app.cfg.Search.DefaultLimit, app.cfg.Search.MaxLimit)))
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "页码")
	cmd.Flags().IntVar(&limit, "limit", 0, "每页条数（0 使用配置默认值）")
	return cmd
}

// ── approve ──

func newApproveCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>...",
		Short: "审核通过一条或多条课程对照",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failed int
			for _, raw := range args {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					color.New(color.FgRed).Fprintf(out, "跳过无效 ID %q\n", raw)
					failed++
					continue
				}
				course, err := app.svc.Course.Approve(cmd.Context(), id, operator)
				if err != nil {
					color.New(color.FgRed).Fprintf(out, "#%d 审核失败: %v\n", id, err)
					failed++
					continue
				}
				color.New(color.FgGreen).Fprintf(out, "#%d 已审核: %s ⇄ %s (%s)\n",
					course.ID, course.HomeCourseCode, course.PartnerCourseCode, course.University)
			}
			if failed > 0 {
				return fmt.Errorf("%d 条审核失败", failed)
			}
			return nil
		},
	}
}

// ── export ──

func newExportCmd(app *cli) *cobra.Command {
	var (
		all    bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出课程库为 Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, filename, err := app.svc.Export.ExportCourses(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if output != "" {
				filename = output
			}
			if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入文件失败: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "已导出到 %s\n", filename)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "包含待审核记录")
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件（默认使用建议文件名）")
	return cmd
}

// ── promote ──

func newPromoteCmd(app *cli) *cobra.Command {
	var demote bool
	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "将用户提升为管理员（--demote 降回学生）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := model.RoleAdmin
			if demote {
				role = model.RoleStudent
			}
			user, err := app.svc.User.AssignRoleByEmail(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "%s (%s) 已设为 %s\n", user.Name, user.Email, user.Role)
			if demote {
				// 命令行不连接 Redis，无法吊销已签发的 Token
				color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "旧 Token 在过期前仍携带原角色\n")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&demote, "demote", false, "降级为学生")
	return cmd
}

// ── 输出 ──

func renderCourses(w io.Writer, courses []dto.CourseResponse) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Emnekode", "Partneremne", "Universitet", "Land", "ECTS", "Status", "Dato"})
	table.SetAutoWrapText(false)

	for _, c := range courses {
		status := "Venter"
		if c.Approved {
			status = "Godkjent"
		}
		if c.Verified {
			status += " ✓"
		}
		table.Append([]string{
			strconv.FormatInt(c.ID, 10),
			c.HomeCourseCode,
			strings.TrimSpace(c.PartnerCourseCode + " " + c.PartnerCourseName),
			c.University,
			c.Country,
			strconv.FormatFloat(c.ECTS, 'f', -1, 64),
			status,
			c.ApprovedDate,
		})
	}
	table.Render()
}

func renderPagination(w io.Writer, p response.Pagination) {
	fmt.Fprintf(w, "第 %d/%d 页，共 %d 条\n", p.Page, max(p.TotalPages, 1), p.Total)
}
