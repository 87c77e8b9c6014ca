package server

import "html/template"

// pageTemplates 内置页面模板（仪表盘、聊天机器人）
var pageTemplates = template.Must(template.New("").Parse(`
{{define "dashboard.html"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.title}}</title>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    h1, h2 { margin-bottom: .5rem; }
    .banner { background: #e6ffe6; border: 1px solid #9c9; padding: .5rem 1rem; }
    table { border-collapse: collapse; margin-bottom: 1.5rem; }
    th, td { border: 1px solid #ccc; padding: .3rem .8rem; text-align: left; }
    .transcript { margin: .5rem 0 1.5rem 1rem; }
    .waiter { color: #036; }
    .customer { color: #630; }
  </style>
</head>
<body>
  <h1>Conversation Dashboard</h1>
  {{if .ran}}<p class="banner">Ran {{.ran}} simulations.</p>{{end}}

  <form method="post" action="/simulations/run/">
    <label>Count <input type="number" name="count" value="100" min="1" max="100"></label>
    <label>Diet mode
      <select name="diet-mode">
        <option value="self">self</option>
        <option value="rules">rules</option>
        <option value="llm">llm</option>
      </select>
    </label>
    <button type="submit">Run simulations</button>
  </form>

  <h2>Diet counts</h2>
  <table>
    <tr><th>Diet</th><th>Conversations</th></tr>
    {{range $diet, $count := .data.DietCounts}}
    <tr><td>{{$diet}}</td><td>{{$count}}</td></tr>
    {{end}}
  </table>

  <h2>Top foods by diet</h2>
  {{range $diet, $foods := .data.TopFoods}}
  <h3>{{$diet}}</h3>
  <table>
    <tr><th>Food</th><th>Count</th></tr>
    {{range $foods}}
    <tr><td>{{.Food}}</td><td>{{.Count}}</td></tr>
    {{end}}
  </table>
  {{end}}

  <h2>Latest conversations ({{len .data.Latest}})</h2>
  {{range .data.Latest}}
  <h3>{{.CustomerLabel}} — {{.Diet}} — {{.CreatedAt.Format "2006-01-02 15:04:05"}}</h3>
  <div class="transcript">
    {{range .Messages}}
    <p class="{{.Role}}"><strong>{{.Role}}:</strong> {{.Content}}</p>
    {{end}}
  </div>
  {{end}}
</body>
</html>{{end}}

{{define "chatbot.html"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.title}}</title>
  <style>
    body { font-family: sans-serif; margin: 2rem; max-width: 40rem; }
    #messages { border: 1px solid #ccc; padding: 1rem; min-height: 12rem; margin-bottom: 1rem; }
    .waiter { color: #036; }
    .user { color: #630; }
  </style>
</head>
<body>
  <h1>Waiter Chatbot</h1>
  <div id="messages"></div>
  <form id="chat-form">
    <input type="text" id="message" size="50" autocomplete="off" placeholder="Say something...">
    <button type="submit">Send</button>
  </form>
  <script>
    const box = document.getElementById('messages');
    const addLine = (cls, who, text) => {
      const p = document.createElement('p');
      p.className = cls;
      p.textContent = who + ': ' + text;
      box.appendChild(p);
    };
    document.getElementById('chat-form').addEventListener('submit', async (e) => {
      e.preventDefault();
      const input = document.getElementById('message');
      const message = input.value.trim();
      if (!message) return;
      addLine('user', 'you', message);
      input.value = '';
      const resp = await fetch('/chatbot/', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({message})
      });
      const data = await resp.json();
      addLine('waiter', 'waiter', resp.ok ? data.reply : (data.message || 'error'));
    });
  </script>
</body>
</html>{{end}}
`))
