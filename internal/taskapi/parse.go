package taskapi

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/javiermolinar/taskdesk/internal/dateutil"
	"github.com/javiermolinar/taskdesk/internal/task"
)

// ParseTaskList extracts the task cards from the list page. A card is an
// element with class "task-card"; inside it:
//
//	[data-task-id]          the task id (may be the card itself)
//	.card-title             the title
//	.card-text              the description
//	.badge.bg-secondary     the status badge
//	.priority-<level>       the priority (class on the card or a child)
//	[data-status]           the raw status, preferred over the badge text
//	[data-due-date]         the due date
//
// Cards without a parseable id are skipped.
func ParseTaskList(r io.Reader) ([]*task.Task, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var tasks []*task.Task
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "task-card") {
			if t, ok := parseCard(n); ok {
				tasks = append(tasks, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tasks, nil
}

func parseCard(card *html.Node) (*task.Task, bool) {
	idNode := find(card, func(n *html.Node) bool { _, ok := attr(n, "data-task-id"); return ok })
	if idNode == nil {
		return nil, false
	}
	raw, _ := attr(idNode, "data-task-id")
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, false
	}

	t := &task.Task{ID: id, Priority: task.PriorityMedium}
	if n := find(card, classMatcher("card-title")); n != nil {
		t.Title = text(n)
	}
	if n := find(card, classMatcher("card-text")); n != nil {
		t.Description = text(n)
	}
	if n := find(card, classMatcher("badge", "bg-secondary")); n != nil {
		t.StatusDisplay = text(n)
		if s, ok := task.StatusFromDisplay(t.StatusDisplay); ok {
			t.Status = s
		}
	}
	if n := find(card, func(n *html.Node) bool { _, ok := attr(n, "data-status"); return ok }); n != nil {
		v, _ := attr(n, "data-status")
		if s, err := task.ParseStatus(v); err == nil {
			t.Status = s
		}
	}
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if p, ok := cardPriority(card); ok {
		t.Priority = p
	}
	if n := find(card, func(n *html.Node) bool { _, ok := attr(n, "data-due-date"); return ok }); n != nil {
		v, _ := attr(n, "data-due-date")
		if due, err := dateutil.ParseServerTime(v, nil); err == nil {
			t.Due = &due
		}
	}
	return t, true
}

func cardPriority(card *html.Node) (task.Priority, bool) {
	var found task.Priority
	find(card, func(n *html.Node) bool {
		for _, cls := range classes(n) {
			if level, ok := strings.CutPrefix(cls, "priority-"); ok {
				if p, err := task.ParsePriority(level); err == nil && level != "" {
					found = p
					return true
				}
			}
		}
		return false
	})
	return found, found != ""
}

// InputValue returns the value of the first <input name="name">.
func InputValue(r io.Reader, name string) (string, bool) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false
	}
	n := find(doc, func(n *html.Node) bool {
		v, ok := attr(n, "name")
		return n.Data == "input" && ok && v == name
	})
	if n == nil {
		return "", false
	}
	return attr(n, "value")
}

// ParseFormErrors collects the field errors of a re-rendered form. Errors
// in <ul class="errorlist" id="id_<field>_error"> are keyed by field; other
// error lists and .invalid-feedback blocks are keyed by "".
func ParseFormErrors(r io.Reader) map[string][]string {
	doc, err := html.Parse(r)
	if err != nil {
		return nil
	}

	errs := make(map[string][]string)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "errorlist"):
				field := ""
				if id, ok := attr(n, "id"); ok {
					field = strings.TrimSuffix(strings.TrimPrefix(id, "id_"), "_error")
				}
				for li := n.FirstChild; li != nil; li = li.NextSibling {
					if li.Type == html.ElementNode && li.Data == "li" {
						if msg := text(li); msg != "" {
							errs[field] = append(errs[field], msg)
						}
					}
				}
				return
			case hasClass(n, "invalid-feedback"):
				if msg := text(n); msg != "" {
					errs[""] = append(errs[""], msg)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return errs
}

// find returns the first node in the subtree rooted at n (n included)
// matching match, in document order.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func classes(n *html.Node) []string {
	v, _ := attr(n, "class")
	return strings.Fields(v)
}

func hasClass(n *html.Node, want string) bool {
	for _, c := range classes(n) {
		if c == want {
			return true
		}
	}
	return false
}

func classMatcher(want ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, w := range want {
			if !hasClass(n, w) {
				return false
			}
		}
		return true
	}
}

// text returns the collapsed text content of n.
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
