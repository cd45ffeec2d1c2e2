package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

var templateFuncs = template.FuncMap{
	"percent": func(p float64) string { return strconv.FormatFloat(p, 'f', 0, 64) + "%" },
}

type indexView struct {
	Goals  []*goal.Goal
	Form   goalForm
	Errors []goal.FieldError
}

type goalForm struct {
	Title             string
	StartDate         string
	NumberOfDays      string
	HoursPerDay       string
	ExternalReference string
}

type goalView struct {
	Goal     *goal.Goal
	Progress planning.Progress
	Days     []dayView
}

type dayView struct {
	Number   int
	Date     string
	Percent  float64
	Sections []sectionView
}

type sectionView struct {
	Title     string
	TaskCount int
	Tasks     []taskView
}

type taskView struct {
	checkView
	Subtasks []checkView
}

type checkView struct {
	Key     string
	Label   string
	Checked bool
}

func buildGoalView(g *goal.Goal, state *planning.CompletionState) goalView {
	view := goalView{Goal: g, Progress: g.Progress(state)}
	for d, day := range g.DailyPlan {
		dv := dayView{Number: day.Day, Date: g.DateForDay(day.Day).String()}
		if d < len(view.Progress.Days) {
			dv.Percent = view.Progress.Days[d].Percent
		}
		for s, section := range day.Sections() {
			sv := sectionView{Title: section.Title, TaskCount: len(section.Tasks)}
			for t, task := range section.Tasks {
				key := planning.TaskKey(d, s, t)
				tv := taskView{checkView: checkView{Key: key.String(), Label: task.MainTask, Checked: state.IsChecked(key)}}
				for u, sub := range task.Subtasks {
					subKey := planning.SubtaskKey(d, s, t, u)
					tv.Subtasks = append(tv.Subtasks, checkView{Key: subKey.String(), Label: sub, Checked: state.IsChecked(subKey)})
				}
				sv.Tasks = append(sv.Tasks, tv)
			}
			dv.Sections = append(dv.Sections, sv)
		}
		view.Days = append(view.Days, dv)
	}
	return view
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var b strings.Builder
	if err := s.pages.ExecuteTemplate(&b, name, data); err != nil {
		s.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, form goalForm, fieldErrs []goal.FieldError) {
	goals, err := s.goals.ListGoals(r.Context())
	if err != nil {
		s.logger.Error("list goals", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, status, "index.html", indexView{Goals: goals, Form: form, Errors: fieldErrs})
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, goalForm{HoursPerDay: "1", NumberOfDays: "7"}, nil)
}

// parseGoalForm converts the HTML form into a request. Unparseable numbers
// and dates are reported as field errors.
func parseGoalForm(form goalForm) (goal.Request, []goal.FieldError) {
	var fieldErrs []goal.FieldError
	req := goal.Request{Title: form.Title, ExternalReference: form.ExternalReference}

	if form.StartDate != "" {
		d, err := goal.ParseDate(form.StartDate)
		if err != nil {
			fieldErrs = append(fieldErrs, goal.FieldError{Field: "startDate", Message: "must be a date (YYYY-MM-DD)"})
		}
		req.StartDate = d
	}
	if n, err := strconv.Atoi(strings.TrimSpace(form.NumberOfDays)); err == nil {
		req.NumberOfDays = n
	} else {
		fieldErrs = append(fieldErrs, goal.FieldError{Field: "numberOfDays", Message: "must be a whole number"})
	}
	if h, err := strconv.ParseFloat(strings.TrimSpace(form.HoursPerDay), 64); err == nil {
		req.HoursPerDay = h
	} else {
		fieldErrs = append(fieldErrs, goal.FieldError{Field: "hoursPerDay", Message: "must be a number"})
	}
	return req, fieldErrs
}

func (s *Server) createGoalForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := goalForm{
		Title:             r.PostFormValue("title"),
		StartDate:         r.PostFormValue("startDate"),
		NumberOfDays:      r.PostFormValue("numberOfDays"),
		HoursPerDay:       r.PostFormValue("hoursPerDay"),
		ExternalReference: r.PostFormValue("externalReference"),
	}

	req, fieldErrs := parseGoalForm(form)
	if len(fieldErrs) > 0 {
		s.renderIndex(w, r, http.StatusBadRequest, form, fieldErrs)
		return
	}

	g, err := s.goals.CreateGoal(r.Context(), req)
	if err != nil {
		var verr *goal.ValidationError
		if errors.As(err, &verr) {
			s.renderIndex(w, r, http.StatusBadRequest, form, verr.Fields)
			return
		}
		s.logger.Error("create goal", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/goals/"+g.ID, http.StatusSeeOther)
}

func (s *Server) goalPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "goal_id")
	g, err := s.goals.GetGoal(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	state, err := s.progress.GetState(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.render(w, http.StatusOK, "goal.html", buildGoalView(g, state))
}

func (s *Server) toggleForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "goal_id")
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	key, err := planning.ParseCompletionKey(r.PostFormValue("key"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if _, err := s.progress.Toggle(r.Context(), id, key); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/goals/%s#day-%d", id, key.Day), http.StatusSeeOther)
}
