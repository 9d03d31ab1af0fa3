package controllers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/utils"
)

type pageSection struct {
	Title       string
	Description string
	Questions   []questionView
}

type pageData struct {
	Form     *models.Form
	Settings utils.PresentationSettings
	Groups   []pageSection
	Source   string
	Ratings  []int
	NotFound bool
}

var publicPage = template.Must(template.New("form").Parse(publicPageHTML))

var ratingScale = []int{1, 2, 3, 4, 5}

// groupQuestions xếp câu hỏi không thuộc section lên đầu, sau đó theo thứ tự section.
func groupQuestions(sections []models.Section, questions []models.Question) []pageSection {
	index := make(map[string]int, len(sections))
	groups := []pageSection{{}}
	for _, s := range sections {
		index[s.ID] = len(groups)
		groups = append(groups, pageSection{Title: s.Title, Description: s.Description})
	}
	for _, q := range questions {
		i := 0
		if q.SectionID != nil {
			if j, ok := index[*q.SectionID]; ok {
				i = j
			}
		}
		groups[i].Questions = append(groups[i].Questions, toQuestionView(q))
	}
	if len(groups[0].Questions) == 0 {
		groups = groups[1:]
	}
	return groups
}

// GET /f/:slug?source=qr
func PublicFormPage(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := repository.NewFormRepository(config.DB).FindPublishedBySlug(ctx, c.Param("slug"))
	if err != nil {
		status := http.StatusInternalServerError
		if repository.IsNotFound(err) {
			status = http.StatusNotFound
		}
		c.Render(status, render.HTML{Template: publicPage, Name: "form", Data: pageData{NotFound: true, Settings: utils.DefaultSettings()}})
		return
	}

	sections, questions, err := formContent(ctx, f.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Không thể tải form")
		return
	}

	source := models.SourceWeb
	if strings.EqualFold(c.Query("source"), models.SourceQR) {
		source = models.SourceQR
	}

	c.Render(http.StatusOK, render.HTML{Template: publicPage, Name: "form", Data: pageData{
		Form:     f,
		Settings: utils.NormalizeSettings(f.Settings.Data()),
		Groups:   groupQuestions(sections, questions),
		Source:   source,
		Ratings:  ratingScale,
	}})
}

// GET /api/public/forms/:slug
func GetPublicForm(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := repository.NewFormRepository(config.DB).FindPublishedBySlug(ctx, c.Param("slug"))
	if repository.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Form không tồn tại hoặc chưa được xuất bản"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Lỗi DB"})
		return
	}

	out, err := formDetail(ctx, f, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Không thể lấy form"})
		return
	}
	c.JSON(http.StatusOK, out)
}

const publicPageHTML = `{{define "form"}}<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .NotFound}}Không tìm thấy form{{else}}{{.Form.Title}}{{end}}</title>
<style>
body{margin:0;font-family:{{.Settings.Font}},system-ui,sans-serif;background:{{.Settings.BackgroundColor}};color:{{.Settings.TextColor}}}
main{max-width:720px;margin:0 auto;padding:32px 16px}
.section{margin:24px 0;padding:16px;border-radius:8px;background:rgba(127,127,127,.06)}
.q{margin:16px 0}
.q label.title{display:block;font-weight:600;margin-bottom:8px}
.req{color:#dc2626}
input[type=text],textarea{width:100%;box-sizing:border-box;padding:8px}
button{background:{{.Settings.PrimaryColor}};color:#fff;border:0;padding:10px 20px;cursor:pointer;border-radius:{{if eq .Settings.ButtonStyle "pill"}}999px{{else if eq .Settings.ButtonStyle "square"}}0{{else}}6px{{end}}}
footer{margin-top:32px;font-size:12px;opacity:.7}
</style>
</head>
<body>
<main>
{{if .NotFound}}
<h1>Không tìm thấy form</h1>
<p>Form không tồn tại hoặc chưa được xuất bản.</p>
{{else}}
{{with .Settings.Branding}}{{if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.CompanyName}}" style="max-height:64px">{{end}}{{end}}
<h1>{{.Form.Title}}</h1>
{{if .Form.Description}}<p>{{.Form.Description}}</p>{{end}}
<form id="f">
{{range .Groups}}
<div class="section">
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{range .Questions}}
<div class="q" data-id="{{.ID}}" data-type="{{.Type}}" data-required="{{.Required}}">
<label class="title">{{.Text}}{{if .Required}} <span class="req">*</span>{{end}}</label>
{{if eq .Type "short_text"}}<input type="text" name="{{.ID}}"{{if .Required}} required{{end}}>
{{else if eq .Type "long_text"}}<textarea name="{{.ID}}" rows="4"{{if .Required}} required{{end}}></textarea>
{{else if eq .Type "rating"}}{{$id := .ID}}{{range $.Ratings}}<label><input type="radio" name="{{$id}}" value="{{.}}"> {{.}}</label> {{end}}
{{else if eq .Type "single_choice"}}{{$id := .ID}}{{range .Options}}<label><input type="radio" name="{{$id}}" value="{{.}}"> {{.}}</label><br>{{end}}
{{else if eq .Type "multiple_choice"}}{{$id := .ID}}{{range .Options}}<label><input type="checkbox" name="{{$id}}" value="{{.}}"> {{.}}</label><br>{{end}}
{{end}}
</div>
{{end}}
</div>
{{end}}
<button type="submit">Gửi</button>
<p id="msg"></p>
</form>
<script>
(function(){
  var slug = {{.Form.Slug}}, source = {{.Source}};
  var form = document.getElementById("f"), msg = document.getElementById("msg");
  form.addEventListener("submit", function(ev){
    ev.preventDefault();
    var answers = [], missing = false;
    form.querySelectorAll(".q").forEach(function(q){
      var id = q.dataset.id, type = q.dataset.type, value = null;
      if (type === "multiple_choice") {
        value = Array.prototype.map.call(q.querySelectorAll("input:checked"), function(i){ return i.value; });
        if (!value.length) value = null;
      } else if (type === "single_choice" || type === "rating") {
        var c = q.querySelector("input:checked"); value = c ? c.value : null;
      } else {
        var el = q.querySelector("input,textarea"); value = el.value.trim() || null;
      }
      if (value === null && q.dataset.required === "true") missing = true;
      if (value !== null) answers.push({questionId: id, answer: value});
    });
    if (missing) { msg.textContent = "Vui lòng trả lời các câu hỏi bắt buộc."; return; }
    fetch("/api/submit/" + encodeURIComponent(slug), {
      method: "POST", headers: {"Content-Type": "application/json"},
      body: JSON.stringify({source: source, answers: answers})
    }).then(function(r){
      if (!r.ok) throw new Error();
      form.innerHTML = "<p>Cảm ơn bạn đã gửi phản hồi!</p>";
    }).catch(function(){ msg.textContent = "Gửi thất bại, vui lòng thử lại."; });
  });
})();
</script>
{{end}}
<footer>
{{with .Settings.Branding}}{{if .FooterText}}<p>{{.FooterText}}</p>{{end}}{{if not .HidePoweredBy}}<p>Powered by Form Server</p>{{end}}{{end}}
</footer>
</main>
</body>
</html>{{end}}`
