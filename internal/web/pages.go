package web

import (
	"fmt"
	"html"
	"net/http"
	"strings"
)

// The admin surface is a handful of tiny pages, they are rendered
// inline instead of through a template engine.

func writePage(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// flashHTML renders flash messages, one paragraph per message.
func flashHTML(flashes []any) string {
	var b strings.Builder
	for _, flash := range flashes {
		fmt.Fprintf(&b, "<p><i>%s</i></p>\n", html.EscapeString(fmt.Sprint(flash)))
	}
	return b.String()
}

func csrfInput(token string) string {
	return fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, csrfTokenField, html.EscapeString(token))
}

func homePage() string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
<meta http-equiv="content-type" content="text/html; charset=utf-8">
<title>Home</title>
</head>
<body>
<p>Welcome to our newsletter!</p>
</body>
</html>`
}

func loginPage(csrfToken string, flashes []any) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta http-equiv="content-type" content="text/html; charset=utf-8">
<title>Login</title>
</head>
<body>
%s<form action="/login" method="post">
%s
<label>Username
<input type="text" name="username" placeholder="Enter username">
</label>
<label>Password
<input type="password" name="password" placeholder="Enter password">
</label>
<button type="submit">Login</button>
</form>
</body>
</html>`, flashHTML(flashes), csrfInput(csrfToken))
}

func dashboardPage(username, csrfToken string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta http-equiv="content-type" content="text/html; charset=utf-8">
<title>Admin dashboard</title>
</head>
<body>
<p>Welcome %s!</p>
<p>Available actions:</p>
<ol>
<li><a href="/admin/password">Change password</a></li>
<li><a href="/admin/newsletters">Publish a newsletter issue</a></li>
<li>
<form name="logoutForm" action="/admin/logout" method="post">
%s
<button type="submit">Logout</button>
</form>
</li>
</ol>
</body>
</html>`, html.EscapeString(username), csrfInput(csrfToken))
}

func changePasswordPage(csrfToken string, flashes []any) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta http-equiv="content-type" content="text/html; charset=utf-8">
<title>Change Password</title>
</head>
<body>
<h1>Change Password</h1>
%s<form action="/admin/password" method="post">
%s
<label>Current password
<input type="password" name="current_password" placeholder="Enter your current password">
</label>
<br>
<label>New password
<input type="password" name="new_password" placeholder="Enter a new password">
</label>
<br>
<label>Verify new password
<input type="password" name="verify_new_password" placeholder="Enter the new password again">
</label>
<br>
<button type="submit">Submit</button>
</form>
<a href="/admin/dashboard">&lt;- Back</a>
</body>
</html>`, flashHTML(flashes), csrfInput(csrfToken))
}

func publishNewsletterPage(csrfToken string, flashes []any) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta http-equiv="content-type" content="text/html; charset=utf-8">
<title>Publish Newsletter</title>
</head>
<body>
<h1>Publish Newsletter</h1>
%s<form action="/admin/newsletters" method="post">
%s
<label for="title">Title:</label>
<input id="title" type="text" name="title" placeholder="Enter a newsletter title">
<br>
<label for="content_text">Write your newsletter in plain text:</label>
<textarea id="content_text" name="content_text" rows="10" cols="50" placeholder="Write your newsletter (plain text)"></textarea>
<br>
<label for="content_html">Write your newsletter with HTML:</label>
<textarea id="content_html" name="content_html" rows="10" cols="50" placeholder="Write your newsletter (html)"></textarea>
<br>
<button type="submit">Submit</button>
</form>
<a href="/admin/dashboard">&lt;- Back</a>
</body>
</html>`, flashHTML(flashes), csrfInput(csrfToken))
}
