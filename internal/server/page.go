package server

// indexHTML is the whole UI: two tabs (article URL, pasted text), a
// source dropdown with Auto and Other choices, word bounds, and the
// Generate / Regenerate / Home actions wired to the JSON API.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>newsbrief</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { font-size: 1.6rem; }
  nav button { margin-right: .5rem; }
  label { display: block; margin-top: .8rem; font-weight: 600; }
  input[type=url], input[type=text], textarea, select { width: 100%; padding: .4rem; margin-top: .2rem; box-sizing: border-box; }
  textarea { min-height: 10rem; }
  .bounds { display: flex; gap: 1rem; }
  .bounds div { flex: 1; }
  .actions { margin-top: 1rem; display: flex; gap: .5rem; }
  button { padding: .45rem .9rem; cursor: pointer; }
  #result { margin-top: 1.5rem; padding: 1rem; border: 1px solid #ddd; border-radius: .4rem; display: none; }
  #result h2 { margin-top: 0; }
  #error { margin-top: 1rem; color: #b00020; display: none; }
  #feed { margin-top: 1rem; }
  #feed li { cursor: pointer; margin: .25rem 0; }
  #feed li:hover { text-decoration: underline; }
  .busy { opacity: .5; pointer-events: none; }
  .hidden { display: none; }
</style>
</head>
<body>
<h1>newsbrief</h1>
<p>Pick a news source or paste text, choose the summary length, and generate a headline with a summary in the article's own language.</p>

<nav>
  <button id="tab-url">Article URL</button>
  <button id="tab-text">Pasted text</button>
</nav>

<section id="pane-url">
  <label for="source">Source</label>
  <select id="source"></select>

  <div id="custom-selector-wrap" class="hidden">
    <label for="custom-selector">Content container class</label>
    <input type="text" id="custom-selector" placeholder="e.g. article-body">
  </div>

  <label for="url">Article URL</label>
  <input type="url" id="url" placeholder="https://...">

  <ul id="feed"></ul>
</section>

<section id="pane-text" class="hidden">
  <label for="text">Article text</label>
  <textarea id="text" placeholder="Paste at least 50 words..."></textarea>
</section>

<div class="bounds">
  <div>
    <label for="min-words">Min words</label>
    <input type="number" id="min-words" min="50" max="250">
  </div>
  <div>
    <label for="max-words">Max words</label>
    <input type="number" id="max-words" min="50" max="250">
  </div>
</div>

<div class="actions">
  <button id="generate">Generate</button>
  <button id="regenerate" class="hidden">Regenerate</button>
  <button id="home" class="hidden">Home</button>
</div>

<p id="error"></p>

<article id="result">
  <h2 id="headline"></h2>
  <p id="body"></p>
</article>

<script>
const $ = (id) => document.getElementById(id);
let mode = 'url';

const api = async (method, path, payload) => {
  const opts = { method, headers: { 'Content-Type': 'application/json' } };
  if (payload !== undefined) opts.body = JSON.stringify(payload);
  const resp = await fetch(path, opts);
  if (resp.status === 204) return null;
  const data = await resp.json();
  if (!resp.ok) throw new Error(data.error || 'request failed');
  return data;
};

const currentInput = () => ({
  mode,
  url: $('url').value.trim(),
  text: $('text').value.trim(),
  source: $('source').value === 'Other' ? '' : $('source').value,
  custom_selector: $('source').value === 'Other' ? $('custom-selector').value.trim() : '',
  min_words: parseInt($('min-words').value, 10) || 0,
  max_words: parseInt($('max-words').value, 10) || 0,
});

const showResult = (result) => {
  $('headline').textContent = result.headline;
  $('body').textContent = result.body;
  $('result').style.display = 'block';
  $('regenerate').classList.remove('hidden');
  $('home').classList.remove('hidden');
};

const clearResult = () => {
  $('result').style.display = 'none';
  $('regenerate').classList.add('hidden');
  $('home').classList.add('hidden');
  $('error').style.display = 'none';
};

const showError = (message) => {
  $('error').textContent = message;
  $('error').style.display = 'block';
};

const withBusy = async (fn) => {
  document.body.classList.add('busy');
  try { await fn(); } finally { document.body.classList.remove('busy'); }
};

const loadSources = async () => {
  const data = await api('GET', '/api/sources');
  const select = $('source');
  for (const src of data.sources) {
    const opt = document.createElement('option');
    opt.value = src.name;
    opt.textContent = src.name;
    opt.dataset.hasFeed = src.has_feed;
    select.appendChild(opt);
  }
  for (const extra of ['Auto', 'Other']) {
    const opt = document.createElement('option');
    opt.value = extra;
    opt.textContent = extra;
    select.appendChild(opt);
  }
  $('min-words').value = data.default_min_words;
  $('max-words').value = data.default_max_words;
};

const loadFeed = async () => {
  const select = $('source');
  const opt = select.selectedOptions[0];
  const list = $('feed');
  list.innerHTML = '';
  if (!opt || opt.dataset.hasFeed !== 'true') return;
  try {
    const data = await api('GET', '/api/feed?source=' + encodeURIComponent(select.value));
    for (const item of data.items) {
      const li = document.createElement('li');
      li.textContent = item.title;
      li.onclick = () => { $('url').value = item.url; inputChanged(); };
      list.appendChild(li);
    }
  } catch (e) { /* headlines are a convenience; stay quiet */ }
};

const inputChanged = async () => {
  clearResult();
  try { await api('POST', '/api/input', currentInput()); } catch (e) { /* reset is advisory */ }
};

const switchTab = (next) => {
  mode = next;
  $('pane-url').classList.toggle('hidden', next !== 'url');
  $('pane-text').classList.toggle('hidden', next !== 'text');
  clearResult();
  restore();
};

const restore = async () => {
  try {
    const state = await api('GET', '/api/session?mode=' + mode);
    if (state.phase === 'shown' && state.result) showResult(state.result);
  } catch (e) { /* fresh session */ }
};

$('tab-url').onclick = () => switchTab('url');
$('tab-text').onclick = () => switchTab('text');
$('source').onchange = () => {
  $('custom-selector-wrap').classList.toggle('hidden', $('source').value !== 'Other');
  loadFeed();
  inputChanged();
};
for (const id of ['url', 'text', 'custom-selector', 'min-words', 'max-words']) {
  $(id).addEventListener('change', inputChanged);
}

$('generate').onclick = () => withBusy(async () => {
  clearResult();
  try { showResult(await api('POST', '/api/summarize', currentInput())); }
  catch (e) { showError(e.message); }
});

$('regenerate').onclick = () => withBusy(async () => {
  try { showResult(await api('POST', '/api/regenerate', { mode })); }
  catch (e) { showError(e.message); }
});

$('home').onclick = async () => {
  await api('POST', '/api/reset', { mode });
  $('url').value = '';
  $('text').value = '';
  clearResult();
};

loadSources().then(loadFeed).then(restore);
</script>
</body>
</html>
`
