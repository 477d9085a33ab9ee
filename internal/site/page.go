package site

import (
	"strconv"

	"github.com/gin-gonic/gin"
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"github.com/attanavaid/portfolio/internal/contact"
	"github.com/attanavaid/portfolio/internal/content"
	"github.com/attanavaid/portfolio/internal/scroll"
	"github.com/attanavaid/portfolio/internal/theme"
)

type pageData struct {
	Theme    theme.State
	Default  theme.Preference
	Timeline content.TimelineKind
	Channel  contact.Channel
}

func renderHTML(c *gin.Context, status int, node gomponents.Node) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := node.Render(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) page(d pageData) gomponents.Node {
	prof := s.portfolio.Profile
	resolved := string(d.Theme.Resolved)

	head := []gomponents.Node{
		html.Meta(html.Charset("utf-8")),
		html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
		html.Meta(html.Name("description"), html.Content(prof.Description)),
		html.Meta(html.Name("color-scheme"), html.Content("light dark")),
		html.TitleEl(gomponents.Text(prof.Name + " | " + prof.JobTitle)),
		html.Link(html.Rel("stylesheet"), html.Href("/static/app.css")),
		html.Script(gomponents.Raw(theme.BootstrapScript(d.Default))),
	}
	for _, doc := range s.jsonLD {
		head = append(head, html.Script(html.Type("application/ld+json"), gomponents.Raw(string(doc))))
	}
	head = append(head, html.Script(html.Src("/static/app.js"), gomponents.Attr("defer")))

	return html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Class(resolved),
			gomponents.Attr("data-theme", resolved),
			html.Head(gomponents.Group(head)),
			html.Body(
				gomponents.Attr("data-channel", string(d.Channel)),
				s.navbar(d.Theme),
				gomponents.El("canvas", html.ID("scene"), gomponents.Attr("aria-hidden", "true"),
					gomponents.Attr("data-model", modelURL+".json")),
				html.Main(
					s.hero(),
					s.experience(d.Timeline),
					s.skills(),
					s.projects(),
					s.languages(),
					s.contactSection(d.Channel),
				),
				s.footer(),
			),
		),
	)
}

func (s *Server) navbar(st theme.State) gomponents.Node {
	links := make([]gomponents.Node, 0, len(scroll.NavItems))
	for _, item := range scroll.NavItems {
		links = append(links, html.Li(
			html.A(html.Href("#"+item.ID), gomponents.Attr("data-nav", item.ID), gomponents.Text(item.Name)),
		))
	}
	next := st.Resolved.Opposite()
	return html.Header(
		html.ID("navbar"),
		html.Class("navbar"),
		html.Nav(
			html.A(html.Class("brand"), html.Href("#hero"), gomponents.Attr("data-nav", "hero"),
				gomponents.Text(s.portfolio.Profile.Name)),
			html.Ul(html.ID("nav-links"), html.Class("nav-links"), gomponents.Group(links)),
			html.Form(
				html.Method("post"),
				html.Action("/theme"),
				html.Class("theme-form"),
				html.Input(html.Type("hidden"), html.Name("preference"), html.Value(string(next))),
				html.Input(html.Type("hidden"), html.Name("redirect"), html.Value("/")),
				html.Button(
					html.Type("submit"),
					html.ID("theme-toggle"),
					gomponents.Attr("aria-label", "Switch to "+string(next)+" theme"),
					gomponents.Attr("data-preference", string(st.Preference)),
					gomponents.Text(themeIcon(st.Resolved)),
				),
			),
			html.Button(
				html.Type("button"),
				html.ID("menu-toggle"),
				html.Class("menu-toggle"),
				gomponents.Attr("aria-expanded", "false"),
				gomponents.Attr("aria-controls", "nav-links"),
				gomponents.Text("Menu"),
			),
		),
	)
}

func themeIcon(r theme.Resolved) string {
	if r == theme.ResolvedDark {
		return "☀"
	}
	return "☾"
}

func section(id string, children ...gomponents.Node) gomponents.Node {
	return html.Section(html.ID(id), gomponents.Attr("data-section", id), gomponents.Group(children))
}

func (s *Server) hero() gomponents.Node {
	prof := s.portfolio.Profile
	role := ""
	if len(prof.Roles) > 0 {
		role = prof.Roles[0]
	}
	return section("hero",
		html.Div(html.Class("hero-copy"), gomponents.Attr("data-parallax", "hero"),
			html.P(html.Class("greeting"), gomponents.Text(prof.Greeting)),
			html.H1(gomponents.Text(prof.Name)),
			html.P(html.Class("roles"), html.Span(html.ID("role"), gomponents.Text(role))),
			html.P(html.Class("description"), gomponents.Text(prof.Description)),
			html.Div(html.Class("about"), gomponents.Raw(prof.AboutHTML)),
			html.Div(html.Class("hero-actions"),
				html.A(html.Class("button"), html.Href("#contact"), gomponents.Attr("data-nav", "contact"),
					gomponents.Text("Get in touch")),
				gomponents.If(prof.Resume != "",
					html.A(html.Class("button secondary"), html.Href(prof.Resume), html.Target("_blank"),
						html.Rel("noopener"), gomponents.Text("Resume"))),
			),
		),
		gomponents.If(prof.Image != "",
			html.Img(html.Class("portrait"), html.Src(prof.Image), html.Alt(prof.Name))),
	)
}

// experience renders both timelines. The inactive one is hidden so the
// page can switch tabs without a reload; the query parameter picks the
// visible one for clients without script.
func (s *Server) experience(active content.TimelineKind) gomponents.Node {
	tab := func(kind content.TimelineKind, label string) gomponents.Node {
		class := "tab"
		if kind == active {
			class += " active"
		}
		return html.A(html.Class(class), html.Href("?experience="+string(kind)+"#experience"),
			gomponents.Attr("data-timeline", string(kind)), gomponents.Text(label))
	}

	list := func(kind content.TimelineKind) gomponents.Node {
		entries := s.portfolio.Timeline(kind)
		items := make([]gomponents.Node, 0, len(entries))
		for _, e := range entries {
			if e.Work != nil {
				items = append(items, workEntry(*e.Work))
			} else {
				items = append(items, educationEntry(*e.Education))
			}
		}
		return html.Ol(html.Class("timeline"), gomponents.Attr("data-timeline-list", string(kind)),
			gomponents.If(kind != active, gomponents.Attr("hidden")), gomponents.Group(items))
	}

	return section("experience",
		html.H2(gomponents.Text("Experience")),
		html.Div(html.Class("tabs"), gomponents.Attr("role", "tablist"),
			tab(content.TimelineWork, "Work"),
			tab(content.TimelineEducation, "Education"),
		),
		html.Div(gomponents.Attr("data-parallax", "experience"),
			list(content.TimelineWork),
			list(content.TimelineEducation),
		),
	)
}

func workEntry(w content.Work) gomponents.Node {
	bullets := make([]gomponents.Node, 0, len(w.Description))
	for i, line := range w.Description {
		class := ""
		if i >= content.CollapsedBullets {
			class = "extra"
		}
		bullets = append(bullets, html.Li(html.Class(class), gomponents.Text(line)))
	}
	return html.Li(html.Class("timeline-entry work"),
		entryHeader(w.Icon, w.Title, w.Subtitle, w.Period, w.Location),
		html.Ul(html.Class("bullets collapsed"), gomponents.Group(bullets)),
		gomponents.If(w.Expandable(),
			html.Button(html.Type("button"), html.Class("read-more"), gomponents.Attr("data-expand", ""),
				gomponents.Text("Read more"))),
		techList(w.Specialization),
	)
}

func educationEntry(e content.Education) gomponents.Node {
	return html.Li(html.Class("timeline-entry education"),
		entryHeader(e.Icon, e.Title, e.Subtitle, e.Period, e.Location),
		gomponents.If(e.HasCGPA(), html.P(html.Class("cgpa"), gomponents.Text("CGPA: "+e.CGPA))),
		gomponents.If(e.HasHonors(), html.P(html.Class("honors"), gomponents.Text(e.Honors))),
	)
}

func entryHeader(icon, title, subtitle, period, location string) gomponents.Node {
	return html.Div(html.Class("entry-header"),
		gomponents.If(icon != "", html.Img(html.Class("entry-icon"), html.Src(icon), html.Alt(""))),
		html.H3(gomponents.Text(title)),
		html.P(html.Class("subtitle"), gomponents.Text(subtitle)),
		html.P(html.Class("meta"), gomponents.Text(period+" · "+location)),
	)
}

func techBadge(t content.TechItem) gomponents.Node {
	switch t.Kind() {
	case content.TechLogo:
		return html.Span(html.Class("tech"), html.Img(html.Src(t.Logo), html.Alt(""), gomponents.Attr("loading", "lazy")),
			gomponents.Text(t.Name))
	case content.TechIcon:
		return html.Span(html.Class("tech"), html.I(gomponents.Attr("data-icon", t.Icon)), gomponents.Text(t.Name))
	}
	return html.Span(html.Class("tech plain"), gomponents.Text(t.Name))
}

func techList(items []content.TechItem) gomponents.Node {
	if len(items) == 0 {
		return nil
	}
	badges := make([]gomponents.Node, 0, len(items))
	for _, t := range items {
		badges = append(badges, techBadge(t))
	}
	return html.Div(html.Class("tech-list"), gomponents.Group(badges))
}

func skillCard(sk content.Skill) gomponents.Node {
	return html.Div(html.Class("skill-card"),
		gomponents.If(sk.Icon != "", html.Img(html.Src(sk.Icon), html.Alt(""))),
		html.H3(gomponents.Text(sk.Name)),
		techList(sk.Tech),
	)
}

func (s *Server) skills() gomponents.Node {
	cards := make([]gomponents.Node, 0, len(s.portfolio.Skills))
	for _, sk := range s.portfolio.Skills {
		cards = append(cards, skillCard(sk))
	}
	learning := make([]gomponents.Node, 0, len(s.portfolio.Learning))
	for _, sk := range s.portfolio.Learning {
		learning = append(learning, skillCard(sk))
	}
	return section("skills",
		html.H2(gomponents.Text("Skills")),
		html.Div(html.Class("skill-grid"), gomponents.Attr("data-parallax", "skills"), gomponents.Group(cards)),
		gomponents.If(len(learning) > 0, html.Div(html.Class("learning"),
			html.H3(gomponents.Text("Currently Learning")),
			html.Div(html.Class("skill-grid"), gomponents.Group(learning)),
		)),
	)
}

func projectMedia(p content.Project) gomponents.Node {
	if p.HasVideo() {
		return html.Video(html.Src(p.Video), gomponents.Attr("poster", p.Image),
			gomponents.Attr("muted"), gomponents.Attr("loop"), gomponents.Attr("playsinline"), gomponents.Attr("autoplay"))
	}
	return html.Img(html.Src(p.Image), html.Alt(p.Title), gomponents.Attr("loading", "lazy"))
}

func projectLinks(p content.Project) gomponents.Node {
	return html.Div(html.Class("project-links"),
		gomponents.If(p.Website != "", html.A(html.Href(p.Website), html.Target("_blank"), html.Rel("noopener"),
			gomponents.Text("Website"))),
		gomponents.If(p.GitHub != "", html.A(html.Href(p.GitHub), html.Target("_blank"), html.Rel("noopener"),
			gomponents.Text("GitHub"))),
	)
}

func projectDialogID(i int) string { return "project-" + strconv.Itoa(i) }

func projectCard(i int, p content.Project) gomponents.Node {
	tags := make([]gomponents.Node, 0, content.CardTags+1)
	for _, t := range p.VisibleTags() {
		tags = append(tags, techBadge(t))
	}
	if extra := len(p.Tags) - content.CardTags; extra > 0 {
		tags = append(tags, html.Span(html.Class("tech more"), gomponents.Text("+"+strconv.Itoa(extra))))
	}

	return html.Article(html.Class("project-card"),
		html.Div(html.Class("project-media"), projectMedia(p)),
		html.H3(gomponents.Text(p.Title)),
		html.Div(html.Class("project-description"), gomponents.Raw(p.DescriptionHTML)),
		html.Div(html.Class("tech-list"), gomponents.Group(tags)),
		html.Button(html.Type("button"), html.Class("project-open"),
			gomponents.Attr("data-project", projectDialogID(i)), gomponents.Text("Details")),
		projectLinks(p),
	)
}

// projectDialog holds the full project: media, description, every tag and
// the links. The page opens it as a modal.
func projectDialog(i int, p content.Project) gomponents.Node {
	tags := make([]gomponents.Node, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, techBadge(t))
	}
	return gomponents.El("dialog", html.ID(projectDialogID(i)), html.Class("project-dialog"),
		gomponents.Attr("aria-label", p.Title),
		html.Form(html.Method("dialog"),
			html.Button(html.Class("dialog-close"), gomponents.Attr("aria-label", "Close"), gomponents.Text("×")),
		),
		html.Div(html.Class("project-media"), projectMedia(p)),
		html.H2(gomponents.Text(p.Title)),
		html.Div(html.Class("project-description"), gomponents.Raw(p.DescriptionHTML)),
		html.H3(gomponents.Text("Tech Stack")),
		html.Div(html.Class("tech-list"), gomponents.Group(tags)),
		projectLinks(p),
	)
}

func (s *Server) projects() gomponents.Node {
	cards := make([]gomponents.Node, 0, len(s.portfolio.Projects))
	dialogs := make([]gomponents.Node, 0, len(s.portfolio.Projects))
	for i, p := range s.portfolio.Projects {
		cards = append(cards, projectCard(i, p))
		dialogs = append(dialogs, projectDialog(i, p))
	}
	return section("projects",
		html.H2(gomponents.Text("Projects")),
		html.Div(html.Class("project-grid"), gomponents.Attr("data-parallax", "projects"), gomponents.Group(cards)),
		gomponents.Group(dialogs),
	)
}

func (s *Server) languages() gomponents.Node {
	langs := s.portfolio.Languages
	buttons := make([]gomponents.Node, 0, len(langs))
	for i, l := range langs {
		buttons = append(buttons, html.Li(
			html.Button(html.Type("button"), gomponents.Attr("data-language", strconv.Itoa(i)),
				html.Strong(gomponents.Text(l.Language)),
				gomponents.If(l.Level != "", html.Span(html.Class("level"), gomponents.Text(l.Level))),
			),
		))
	}
	var text, translation string
	if len(langs) > 0 {
		text, translation = langs[0].Text, langs[0].Translation
	}
	return section("languages",
		html.H2(gomponents.Text("Languages")),
		html.Div(html.ID("typewriter"), html.Class("typewriter"), gomponents.Attr("data-parallax", "languages"),
			gomponents.Attr("aria-live", "polite"),
			html.P(html.Class("primary"), gomponents.Text(text)),
			html.P(html.Class("translation"), gomponents.Text(translation)),
		),
		html.Ul(html.Class("language-list"), gomponents.Group(buttons)),
	)
}

func (s *Server) contactSection(ch contact.Channel) gomponents.Node {
	field := func(label, name, typ string, required bool) gomponents.Node {
		return html.Label(gomponents.Attr("for", "contact-"+name), gomponents.Text(label),
			html.Input(html.ID("contact-"+name), html.Name(name), html.Type(typ), gomponents.If(required, html.Required())),
		)
	}
	return section("contact",
		html.H2(gomponents.Text("Contact")),
		html.Form(
			html.ID("contact-form"),
			html.Method("post"),
			html.Action("/contact"),
			gomponents.Attr("data-channel", string(ch)),
			field("Name", "name", "text", true),
			field("Email", "email", "email", true),
			field("Subject", "subject", "text", false),
			html.Label(gomponents.Attr("for", "contact-message"), gomponents.Text("Message"),
				html.Textarea(html.ID("contact-message"), html.Name("message"), gomponents.Attr("rows", "5"), html.Required()),
			),
			html.Button(html.Type("submit"), gomponents.Text("Send Message")),
		),
		html.Div(html.ID("contact-status"), gomponents.Attr("aria-live", "polite")),
	)
}

// contactResult is the fragment returned by POST /contact.
func contactResult(ok bool, text, mailto string) gomponents.Node {
	class := "contact-error"
	if ok {
		class = "contact-success"
	}
	return html.Div(html.Class(class), gomponents.Attr("role", "status"),
		html.P(gomponents.Text(text)),
		gomponents.If(mailto != "", html.A(html.Href(mailto), gomponents.Text("Open your email app"))),
	)
}

func (s *Server) footer() gomponents.Node {
	prof := s.portfolio.Profile
	links := make([]gomponents.Node, 0, len(prof.Socials))
	for _, so := range prof.Socials {
		links = append(links, html.Li(html.A(html.Href(so.URL), html.Target("_blank"), html.Rel("noopener"),
			gomponents.Attr("data-icon", so.Icon), gomponents.Text(so.Name))))
	}
	return html.Footer(html.Class("footer"),
		html.Ul(html.Class("socials"), gomponents.Group(links)),
		html.P(gomponents.Text("© "+prof.Name)),
	)
}
