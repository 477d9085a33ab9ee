package theme

import "strings"

const bootstrapTemplate = `(function(){
  var root=document.documentElement;
  var stored=null;
  try { stored=localStorage.getItem('{{key}}'); } catch (e) {}
  var pref=(stored==='light'||stored==='dark'||stored==='system')?stored:'{{default}}';
  var resolved=pref;
  if(pref==='system'){
    var dark=false;
    try { dark=window.matchMedia('(prefers-color-scheme: dark)').matches; } catch (e) {}
    resolved=dark?'dark':'light';
  }
  root.classList.remove('light','dark');
  root.classList.add(resolved);
  root.setAttribute('data-theme',resolved);
})();`

// BootstrapScript returns the inline script that applies the stored theme
// before first paint. It must resolve exactly as Controller does.
func BootstrapScript(def Preference) string {
	if !def.Valid() {
		def = DefaultPreference
	}
	return strings.NewReplacer("{{key}}", StorageKey, "{{default}}", string(def)).Replace(bootstrapTemplate)
}
